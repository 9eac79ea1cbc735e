// Package config loads runtime configuration for the AI Doc Pro CLI.
//
// # Sources and precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config; .yaml/.yml files
//     are read as YAML, everything else as JSON.
//  3. Environment variables, after loading ./.env when present.
//  4. Command-line flags.
//
// # Environment
//
//	DOCPRO_API_URL            (fallback VITE_API_URL)
//	DOCPRO_IDENTITY_URL       (fallback VITE_SUPABASE_URL)
//	DOCPRO_IDENTITY_KEY       (fallback VITE_SUPABASE_ANON_KEY)
//	DOCPRO_DB, DOCPRO_DOWNLOAD_DIR, DOCPRO_LOG_LEVEL, DOCPRO_LOG_FORMAT
//	DOCPRO_MAX_FILES, DOCPRO_ALLOWED_EXTENSIONS (comma separated)
//	DOCPRO_REQUEST_TIMEOUT (Go duration), DOCPRO_REGISTRATION_MODE
//	DOCPRO_ARTIFACT_SINK, DOCPRO_S3_BUCKET, DOCPRO_S3_REGION,
//	DOCPRO_S3_ENDPOINT, DOCPRO_S3_ACCESS_KEY, DOCPRO_S3_SECRET_KEY,
//	DOCPRO_S3_PREFIX
//
// # File schema
//
//	api_url: http://127.0.0.1:8000
//	identity_url: https://project.supabase.co
//	identity_key: public-anon-key
//	max_files: 10
//	allowed_extensions: [.docx, .doc]
//	request_timeout: 2m
//	registration_mode: auto   # or confirm
//	artifact_sink: s3
//	s3:
//	  bucket: docpro
//	  base_endpoint: http://127.0.0.1:9000
package config
