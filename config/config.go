package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"db"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Log        LogConfig        `mapstructure:"log"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置（仅用于排期重算互斥锁，可缺省）
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SchedulingConfig 排期引擎默认值
// 项目（job）与公司设置中的同名字段优先，缺省时回落到这里
type SchedulingConfig struct {
	DefaultLeadDays             int           `mapstructure:"default_lead_days"`              // 生产提前量（工作日）
	DefaultProductionWindowDays int           `mapstructure:"default_production_window_days"` // 生产窗口（工作日）
	DefaultIfcLeadDays          int           `mapstructure:"default_ifc_lead_days"`          // IFC 图纸提前量（工作日）
	DefaultDaysToAchieveIfc     int           `mapstructure:"default_days_to_achieve_ifc"`    // 深化设计所需天数（工作日）
	HolidayWindowYears          int           `mapstructure:"holiday_window_years"`           // 节假日加载窗口（开工日期前后 N 年）
	RegenLockTTL                time.Duration `mapstructure:"regen_lock_ttl"`                 // 排期重算 Redis 锁 TTL
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "panel_schedule")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Australia/Melbourne")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)  // 60分钟
	v.SetDefault("db.conn_max_idle_time", 30) // 30分钟

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("scheduling.default_lead_days", 10)
	v.SetDefault("scheduling.default_production_window_days", 10)
	v.SetDefault("scheduling.default_ifc_lead_days", 14)
	v.SetDefault("scheduling.default_days_to_achieve_ifc", 21)
	v.SetDefault("scheduling.holiday_window_years", 2)
	v.SetDefault("scheduling.regen_lock_ttl", "30s")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("PANEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	s := c.Scheduling
	if s.DefaultLeadDays < 0 || s.DefaultProductionWindowDays < 0 ||
		s.DefaultIfcLeadDays < 0 || s.DefaultDaysToAchieveIfc < 0 {
		return fmt.Errorf("配置校验失败: scheduling 下的默认天数不能为负数")
	}
	if s.HolidayWindowYears <= 0 {
		return fmt.Errorf("配置校验失败: scheduling.holiday_window_years 必须大于 0")
	}
	return nil
}

// DefaultSchedulingConfig 返回与 Load 默认值一致的排期配置（测试与工具使用）
func DefaultSchedulingConfig() SchedulingConfig {
	return SchedulingConfig{
		DefaultLeadDays:             10,
		DefaultProductionWindowDays: 10,
		DefaultIfcLeadDays:          14,
		DefaultDaysToAchieveIfc:     21,
		HolidayWindowYears:          2,
		RegenLockTTL:                30 * time.Second,
	}
}
