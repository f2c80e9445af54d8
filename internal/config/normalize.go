package config

import "strings"

func (c *Config) normalize() error {
	for _, field := range []*string{
		&c.Paths.OutputDir,
		&c.Paths.LogDir,
		&c.Paths.SessionDir,
		&c.TTS.ModelDir,
	} {
		expanded, err := expandPath(strings.TrimSpace(*field))
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	c.TTS.Binary = strings.TrimSpace(c.TTS.Binary)
	c.TTS.Voice = strings.TrimSpace(c.TTS.Voice)
	return nil
}
