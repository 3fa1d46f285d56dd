// Package config handles configuration loading for the chatlingo backend.
//
// Configuration is loaded from YAML files with ${VAR_NAME} environment
// variable expansion. Default() builds a configuration from environment
// variables alone for local development.
//
// Sections: server (http_addr, allowed_origins), database (path), auth
// (bearer_token, jwt_secret), content (seed_disabled), openai (api_key,
// base_url, models), whatsapp (token, phone_number_id, graph_api_version)
// and logging (level, format).
package config
