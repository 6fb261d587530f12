package extract

import (
	"fmt"
	"strings"

	"ddp_extract/internal/filters"
	"ddp_extract/internal/messages"
	"ddp_extract/internal/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config drives a batch run over one or more export archives.
type Config struct {
	Files        []string
	Output       string
	Format       string
	Groups       string
	Tables       []string
	CatalogPath  string
	VariantsPath string
	Generator    string
	Workers      int
	LogLevel     string
	Tracking     bool
}

// ConfigFromViper reads the keys bound by the command line, environment and config file.
func ConfigFromViper(v *viper.Viper) Config {
	return Config{
		Files:        utils.SplitCommaList(v.GetStringSlice("file")),
		Output:       v.GetString("output"),
		Format:       utils.ToLowerTrim(v.GetString("format")),
		Groups:       utils.ToLowerTrim(v.GetString("groups")),
		Tables:       utils.SplitCommaList(v.GetStringSlice("table")),
		CatalogPath:  v.GetString("catalog"),
		VariantsPath: v.GetString("variants"),
		Generator:    v.GetString("generator"),
		Workers:      v.GetInt("workers"),
		LogLevel:     utils.ToLowerTrim(v.GetString("log-level")),
		Tracking:     v.GetBool("tracking"),
	}
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Files, validation.Required.Error("at least one archive is required")),
		validation.Field(&c.Output, validation.Required),
		validation.Field(&c.Format, validation.Required, validation.In(FormatJSON, FormatYAML)),
		validation.Field(&c.Groups, validation.By(validGroupMode)),
		validation.Field(&c.Tables, validation.By(knownTables)),
		validation.Field(&c.Workers, validation.Min(0)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	)
}

func validGroupMode(value interface{}) error {
	raw, _ := value.(string)
	_, err := messages.ParseGroupMode(raw)
	return err
}

func knownTables(value interface{}) error {
	requested, _ := value.([]string)
	if unknown := filters.UnknownTables(requested); len(unknown) > 0 {
		return fmt.Errorf("unknown table(s) %s", strings.Join(unknown, ", "))
	}
	return nil
}
