package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DBConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MaxRetries      int           `mapstructure:"max_retries"`
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Broker       string        `mapstructure:"broker"`
	MailTopic    string        `mapstructure:"mail_topic"`
	GroupID      string        `mapstructure:"group_id"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type MailConfig struct {
	Backend     string        `mapstructure:"backend"`
	From        string        `mapstructure:"from"`
	SendTimeout time.Duration `mapstructure:"send_timeout"`
	SMTP        SMTPConfig    `mapstructure:"smtp"`
}

type ProofConfig struct {
	EncryptionKey string `mapstructure:"encryption_key"`
	MaxBytes      int64  `mapstructure:"max_bytes"`
}

type UploadConfig struct {
	AvatarDir      string `mapstructure:"avatar_dir"`
	MaxAvatarBytes int64  `mapstructure:"max_avatar_bytes"`
}

type LeaveDefaultsConfig struct {
	Annual     float64 `mapstructure:"annual"`
	Medical    float64 `mapstructure:"medical"`
	ShortLeave float64 `mapstructure:"short_leave"`
}

type ReminderConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	LockTTL time.Duration `mapstructure:"lock_ttl"`
}

type Config struct {
	AppEnv        string              `mapstructure:"app_env"`
	HTTP          HTTPConfig          `mapstructure:"http"`
	DB            DBConfig            `mapstructure:"db"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Mail          MailConfig          `mapstructure:"mail"`
	Proof         ProofConfig         `mapstructure:"proof"`
	Upload        UploadConfig        `mapstructure:"upload"`
	LeaveDefaults LeaveDefaultsConfig `mapstructure:"leave_defaults"`
	Reminder      ReminderConfig      `mapstructure:"reminder"`
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads an optional config.yaml from the working directory and lets
// environment variables override every key (db.host -> DB_HOST).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")

	v.SetDefault("http.port", "3000")
	v.SetDefault("http.read_timeout", 5*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "go_leave")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", time.Hour)
	v.SetDefault("db.max_retries", 5)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.broker", "")
	v.SetDefault("kafka.mail_topic", "leave.mail.requested.v1")
	v.SetDefault("kafka.group_id", "go-leave-mailer")
	v.SetDefault("kafka.poll_interval", 3*time.Second)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_ttl", 15*time.Minute)
	v.SetDefault("jwt.refresh_ttl", 7*24*time.Hour)

	v.SetDefault("mail.backend", "log")
	v.SetDefault("mail.from", "no-reply@go-leave.local")
	v.SetDefault("mail.send_timeout", 15*time.Second)
	v.SetDefault("mail.smtp.host", "localhost")
	v.SetDefault("mail.smtp.port", 587)
	v.SetDefault("mail.smtp.username", "")
	v.SetDefault("mail.smtp.password", "")

	v.SetDefault("proof.encryption_key", "")
	v.SetDefault("proof.max_bytes", 5<<20)

	v.SetDefault("upload.avatar_dir", "uploads/avatars")
	v.SetDefault("upload.max_avatar_bytes", 2<<20)

	v.SetDefault("leave_defaults.annual", 20)
	v.SetDefault("leave_defaults.medical", 4)
	v.SetDefault("leave_defaults.short_leave", 24)

	v.SetDefault("reminder.enabled", true)
	v.SetDefault("reminder.lock_ttl", 55*time.Minute)
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	if strings.TrimSpace(c.Proof.EncryptionKey) == "" {
		return errors.New("PROOF_ENCRYPTION_KEY is required")
	}
	switch c.Mail.Backend {
	case "smtp", "kafka", "log":
	default:
		return fmt.Errorf("unsupported MAIL_BACKEND %q", c.Mail.Backend)
	}
	if c.Mail.Backend == "kafka" && c.Kafka.Broker == "" {
		return errors.New("KAFKA_BROKER is required for the kafka mail backend")
	}
	return nil
}
