package app

import "os"

// ApplyEnvConfig applies CFSCRAPE_* environment variables to cfg, skipping
// fields whose flag is in changed.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("user-agent", os.Getenv("CFSCRAPE_USER_AGENT"), &cfg.UserAgent)
	s.setString("log-level", os.Getenv("CFSCRAPE_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("timeout", os.Getenv("CFSCRAPE_TIMEOUT"), &cfg.Timeout); err != nil {
		return err
	}

	s.setBoolFromString("insecure", os.Getenv("CFSCRAPE_VERIFY"), &cfg.Verify)
	s.setBoolFromString("headful", os.Getenv("CFSCRAPE_HEADFUL"), &cfg.Headful)

	proxies := map[string]string{}
	if v := os.Getenv("CFSCRAPE_PROXY_HTTP"); v != "" {
		proxies["http"] = v
	}
	if v := os.Getenv("CFSCRAPE_PROXY_HTTPS"); v != "" {
		proxies["https"] = v
	}
	s.mergeMap("proxy", proxies, &cfg.Proxies)

	return nil
}
