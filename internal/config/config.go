package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const ReservedAdminUsername = "admin"

var (
	JwtSecret    string
	Issuer       string
	ServerPort   string
	IsProduction bool

	DbHost     string
	DbPort     string
	DbUser     string
	DbPassword string
	DbName     string
	DbSSLMode  string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioBucket    string
	MinioPublicURL string

	MongoURI      string
	MongoDatabase string

	LogLevel  string
	LogFormat string

	AuditRetentionDays int
	BackupSchedule     string
	CleanupSchedule    string
	MaxUploadMB        int64

	CORSAllowedOrigins []string
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("JWT_SECRET", "defaultsecret")
	v.SetDefault("ISSUER", "fieldreport")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("APP_ENV", "development")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "fieldreport")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	v.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_BUCKET", "fieldreport")
	v.SetDefault("MINIO_PUBLIC_URL", "")

	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DATABASE", "fieldreport")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("AUDIT_RETENTION_DAYS", 90)
	v.SetDefault("BACKUP_SCHEDULE", "0 3 * * *")
	v.SetDefault("CLEANUP_SCHEDULE", "30 3 * * *")
	v.SetDefault("MAX_UPLOAD_MB", 32)

	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
}

// LoadConfig reads .env (when present) and the process environment into the
// package-level settings.
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	JwtSecret = v.GetString("JWT_SECRET")
	Issuer = v.GetString("ISSUER")
	ServerPort = v.GetString("SERVER_PORT")
	IsProduction = v.GetString("APP_ENV") == "production"

	DbHost = v.GetString("DB_HOST")
	DbPort = v.GetString("DB_PORT")
	DbUser = v.GetString("DB_USER")
	DbPassword = v.GetString("DB_PASSWORD")
	DbName = v.GetString("DB_NAME")
	DbSSLMode = v.GetString("DB_SSLMODE")

	MinioEndpoint = v.GetString("MINIO_ENDPOINT")
	MinioAccessKey = v.GetString("MINIO_ACCESS_KEY")
	MinioSecretKey = v.GetString("MINIO_SECRET_KEY")
	MinioUseSSL = v.GetBool("MINIO_USE_SSL")
	MinioBucket = v.GetString("MINIO_BUCKET")
	MinioPublicURL = v.GetString("MINIO_PUBLIC_URL")

	MongoURI = v.GetString("MONGO_URI")
	MongoDatabase = v.GetString("MONGO_DATABASE")

	LogLevel = v.GetString("LOG_LEVEL")
	LogFormat = v.GetString("LOG_FORMAT")

	AuditRetentionDays = v.GetInt("AUDIT_RETENTION_DAYS")
	BackupSchedule = v.GetString("BACKUP_SCHEDULE")
	CleanupSchedule = v.GetString("CLEANUP_SCHEDULE")
	MaxUploadMB = v.GetInt64("MAX_UPLOAD_MB")

	CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
