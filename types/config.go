package types

// Config data
type Category struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Emoji       string `yaml:"emoji"`
}

type ConfigDatabase struct {
	Sqlite string `yaml:"sqlite"`
	Redis  string `yaml:"redis"`
}

type ConfigChannels struct {
	LogChannel string `yaml:"log_channel"`
}

type ConfigRoles struct {
	StaffRole string `yaml:"staff_role"`
}

type ConfigPanel struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
}

type ConfigTranscripts struct {
	Dir string `yaml:"dir"`
}

type Config struct {
	Categories  []Category        `yaml:"categories"`
	Database    ConfigDatabase    `yaml:"database"`
	Channels    ConfigChannels    `yaml:"channels"`
	Roles       ConfigRoles       `yaml:"roles"`
	Panel       ConfigPanel       `yaml:"panel"`
	Transcripts ConfigTranscripts `yaml:"transcripts"`
	ProxyHost   string            `yaml:"proxy_host"`
}

// Category looks up a catalog entry by its configured name.
func (c *Config) Category(name string) (Category, bool) {
	for _, cat := range c.Categories {
		if cat.Name == name {
			return cat, true
		}
	}

	return Category{}, false
}

// Secrets are read from the environment, not from config.yaml.
type Secrets struct {
	Token         string
	ApplicationID string
	GuildID       string
}
