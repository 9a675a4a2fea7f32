// Package config loads runtime configuration for the taskdesk CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. An optional dotenv file, loaded into the process environment.
//  3. An optional JSON or YAML file (--config).
//  4. TASKDESK_* environment variables; dots in keys become underscores,
//     so asset.s3.bucket is read from TASKDESK_ASSET_S3_BUCKET.
//  5. Command-line flags that were set explicitly.
//
// # File schema
//
//	api:
//	  base_url: http://localhost:8800/api
//	  token: eyJhbGciOi...
//	  timeout: 30s
//	asset:
//	  provider: cloudinary        # or s3
//	  cloud_name: demo
//	  upload_preset: unsigned
//	  s3:
//	    endpoint: http://localhost:9000
//	    bucket: taskdesk
//	    public_base_url: http://localhost:9000/taskdesk
//	upload:
//	  concurrency: 1
//	journal:
//	  driver: sqlite              # pgx, or empty to disable
//	  dsn: /home/me/.config/taskdesk/journal.db
//	log:
//	  level: info
//	  format: text                # json, console
//	bridge:
//	  addr: 127.0.0.1:8787
//
// Asset settings are validated separately (see (*Config).ValidateAssets)
// because only commands that upload files need them.
package config
