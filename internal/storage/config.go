package storage

import "os"

// MinIOConfig describes the bucket that receives saved exports when
// EXPORT_BACKEND=minio. Exported files land under Bucket/Prefix, named
// like the download with a " (n)" suffix when that name is taken.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	// Prefix is prepended to every exported object key.
	Prefix string
}

// LoadMinIOConfig reads the export bucket settings from MINIO_* variables.
// The bucket defaults to "blogdraft" and the prefix to "exports".
func LoadMinIOConfig() *MinIOConfig {
	useSSL := false
	if os.Getenv("MINIO_USE_SSL") == "true" {
		useSSL = true
	}
	return &MinIOConfig{
		Endpoint:  os.Getenv("MINIO_ENDPOINT"),
		AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("MINIO_SECRET_KEY"),
		UseSSL:    useSSL,
		Bucket:    getEnv("MINIO_BUCKET", "blogdraft"),
		Prefix:    getEnv("MINIO_PREFIX", "exports"),
	}
}

func getEnv(k, d string) string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	return v
}
