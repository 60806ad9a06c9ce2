package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// DATA_DIR is the directory where vidserve stores its data (job history
// database, etc.). Defaults to "./data" relative to the executable.
var DATA_DIR = getDataDir()

// getDataDir determines the data directory path from environment or default.
// Priority: VIDSERVE_DATA_DIR environment variable > "./data" default
func getDataDir() string {
	if dir := os.Getenv("VIDSERVE_DATA_DIR"); dir != "" {
		return dir
	}
	return "./data"
}

// GetDataDir returns the current data directory path. Checked at
// runtime so deployments can point it elsewhere without a rebuild.
func GetDataDir() string {
	return getDataDir()
}

// GetHistoryDBPath returns the full path to the job history database.
// Path: {DATA_DIR}/history.db
func GetHistoryDBPath() string {
	return filepath.Join(GetDataDir(), "history.db")
}

// GetScratchDir returns the directory used for per-job scratch files.
// Every job creates its own uniquely named subdirectory underneath it.
// Defaults to the OS temp directory.
func GetScratchDir() string {
	if dir := os.Getenv("VIDSERVE_SCRATCH_DIR"); dir != "" {
		return dir
	}
	return os.TempDir()
}

// GetListenAddr returns the HTTP listen address.
func GetListenAddr() string {
	if addr := os.Getenv("VIDSERVE_LISTEN_ADDR"); addr != "" {
		return addr
	}
	return ":8080"
}

// GetStoreBackend returns the object store backend to use:
// "gcs", "s3", "sftp" or "local". Defaults to "local".
func GetStoreBackend() string {
	if b := os.Getenv("VIDSERVE_STORE_BACKEND"); b != "" {
		return b
	}
	return "local"
}

// GetLocalStoreDir returns the base directory of the local object store
// backend. Defaults to "./objects".
func GetLocalStoreDir() string {
	if dir := os.Getenv("VIDSERVE_LOCAL_STORE_DIR"); dir != "" {
		return dir
	}
	return "./objects"
}

// GetBucket returns the bucket name for the gcs/s3 backends.
func GetBucket() string {
	return os.Getenv("VIDSERVE_BUCKET")
}

// GetGCSCredentialsFile returns the path to the GCS service account
// JSON key. Empty means application default credentials.
func GetGCSCredentialsFile() string {
	return os.Getenv("VIDSERVE_GCS_CREDENTIALS")
}

// GetS3Region returns the AWS region for the s3 backend.
func GetS3Region() string {
	if r := os.Getenv("VIDSERVE_S3_REGION"); r != "" {
		return r
	}
	return "us-east-1"
}

// GetS3AccessKey returns the static access key for the s3 backend.
func GetS3AccessKey() string { return os.Getenv("VIDSERVE_S3_ACCESS_KEY") }

// GetS3SecretKey returns the static secret key for the s3 backend.
func GetS3SecretKey() string { return os.Getenv("VIDSERVE_S3_SECRET_KEY") }

// GetSFTPHost returns "host:port" for the sftp backend.
func GetSFTPHost() string { return os.Getenv("VIDSERVE_SFTP_HOST") }

// GetSFTPUser returns the sftp user.
func GetSFTPUser() string { return os.Getenv("VIDSERVE_SFTP_USER") }

// GetSFTPPassword returns the sftp password.
func GetSFTPPassword() string { return os.Getenv("VIDSERVE_SFTP_PASSWORD") }

// GetSFTPBaseDir returns the remote base directory for the sftp backend.
func GetSFTPBaseDir() string {
	if dir := os.Getenv("VIDSERVE_SFTP_BASE_DIR"); dir != "" {
		return dir
	}
	return "."
}

// GetRedisAddr returns the Redis address for the distributed active-job
// registry. Empty means the in-memory registry is used (single
// instance deployments).
func GetRedisAddr() string { return os.Getenv("VIDSERVE_REDIS_ADDR") }

// GetRedisPassword returns the Redis password.
func GetRedisPassword() string { return os.Getenv("VIDSERVE_REDIS_PASSWORD") }

// GetPlaybackTokenSecret returns the HMAC secret used to verify
// playback tokens on the binary endpoint. Empty disables token checks.
func GetPlaybackTokenSecret() []byte {
	if s := os.Getenv("VIDSERVE_TOKEN_SECRET"); s != "" {
		return []byte(s)
	}
	return nil
}

// GetMetaURL returns the base URL of the metadata collaborator (the
// main application). Empty selects the in-memory development store.
func GetMetaURL() string { return os.Getenv("VIDSERVE_META_URL") }

// GetMetaAuthToken returns the bearer token sent to the metadata
// collaborator.
func GetMetaAuthToken() string { return os.Getenv("VIDSERVE_META_TOKEN") }

// GetCallbackURL returns the webhook URL notified on job status
// transitions. Empty disables the webhook.
func GetCallbackURL() string { return os.Getenv("VIDSERVE_CALLBACK_URL") }

// GetEncodeTimeout returns the per-invocation timeout for the external
// encoder. A hung encoder would otherwise hold the single-job lease
// for its source forever.
func GetEncodeTimeout() time.Duration {
	if v := os.Getenv("VIDSERVE_ENCODE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return 30 * time.Minute
}

// GetEncodeParallel returns how many qualities of one job may encode
// concurrently. Default 1: encodes are CPU-bound and each ffmpeg
// invocation is already capped at two threads.
func GetEncodeParallel() int {
	if v := os.Getenv("VIDSERVE_ENCODE_PARALLEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 1
}

// GetEncoderName returns the encoder registry entry used for
// transcoding. Defaults to "h264".
func GetEncoderName() string {
	if e := os.Getenv("VIDSERVE_ENCODER"); e != "" {
		return e
	}
	return "h264"
}

// ProxySignedURLs reports whether the binary endpoint should proxy
// bytes through time-limited signed URLs instead of reading the object
// store directly.
func ProxySignedURLs() bool {
	return os.Getenv("VIDSERVE_PROXY_SIGNED_URLS") == "true"
}
