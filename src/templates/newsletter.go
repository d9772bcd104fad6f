package templates

import (
	"bytes"
	"embed"
	"fmt"
	"net/url"
	"strings"
	"sync"
	textTemplate "text/template"

	"gopkg.in/yaml.v3"
)

//go:embed emails/*
var emailTemplates embed.FS

// EmailConfig holds branding and newsletter copy from emails/config.yaml
type EmailConfig struct {
	Branding struct {
		Name    string `yaml:"name"`
		Website string `yaml:"website"`
	} `yaml:"branding"`

	Newsletter struct {
		Signature       string `yaml:"signature"`
		UnsubscribeText string `yaml:"unsubscribe_text"`
		UnsubscribePath string `yaml:"unsubscribe_path"`
	} `yaml:"newsletter"`
}

// NewsletterData holds data for the newsletter template
type NewsletterData struct {
	Body      string
	Recipient string

	// Populated from config.yaml
	Signature       string
	Website         string
	UnsubscribeText string
	UnsubscribeURL  string
}

var (
	loadOnce     sync.Once
	loadedConfig *EmailConfig
	newsletter   *textTemplate.Template
	loadErr      error
)

// LoadEmailConfig loads the embedded email configuration
func LoadEmailConfig() (*EmailConfig, error) {
	data, err := emailTemplates.ReadFile("emails/config.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read email config: %w", err)
	}

	var config EmailConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse email config: %w", err)
	}

	return &config, nil
}

func load() (*EmailConfig, *textTemplate.Template, error) {
	loadOnce.Do(func() {
		loadedConfig, loadErr = LoadEmailConfig()
		if loadErr != nil {
			return
		}
		var tmplData []byte
		tmplData, loadErr = emailTemplates.ReadFile("emails/newsletter.txt")
		if loadErr != nil {
			loadErr = fmt.Errorf("failed to read newsletter.txt: %w", loadErr)
			return
		}
		newsletter, loadErr = textTemplate.New("newsletter").Parse(string(tmplData))
		if loadErr != nil {
			loadErr = fmt.Errorf("failed to parse newsletter template: %w", loadErr)
		}
	})
	return loadedConfig, newsletter, loadErr
}

// RenderNewsletterText wraps a newsletter body with the signature and unsubscribe footer
func RenderNewsletterText(body, recipient string) (string, error) {
	config, tmpl, err := load()
	if err != nil {
		return "", err
	}

	data := NewsletterData{
		Body:            strings.TrimRight(body, "\n"),
		Recipient:       recipient,
		Signature:       config.Newsletter.Signature,
		Website:         config.Branding.Website,
		UnsubscribeText: config.Newsletter.UnsubscribeText,
		UnsubscribeURL:  unsubscribeURL(config, recipient),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute newsletter template: %w", err)
	}

	return buf.String(), nil
}

func unsubscribeURL(config *EmailConfig, recipient string) string {
	base := strings.TrimRight(config.Branding.Website, "/") + config.Newsletter.UnsubscribePath
	return base + "?email=" + url.QueryEscape(recipient)
}
