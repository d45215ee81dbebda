package config

import "strings"

func (c *Config) normalize() error {
	for _, field := range []*string{
		&c.Paths.DataDir,
		&c.Paths.ThumbnailDir,
		&c.Paths.LogDir,
	} {
		expanded, err := expandPath(strings.TrimSpace(*field))
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.Reader.PageView = strings.ToLower(strings.TrimSpace(c.Reader.PageView))
	c.Reader.LayoutDirection = strings.ToLower(strings.TrimSpace(c.Reader.LayoutDirection))
	c.Webdex.BaseURL = strings.TrimRight(strings.TrimSpace(c.Webdex.BaseURL), "/")
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	languages := make([]string, 0, len(c.Library.PreferredLanguages))
	for _, lang := range c.Library.PreferredLanguages {
		lang = strings.TrimSpace(lang)
		if lang != "" {
			languages = append(languages, lang)
		}
	}
	c.Library.PreferredLanguages = languages

	return nil
}
