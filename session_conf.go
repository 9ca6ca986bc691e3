package rtspctl

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Conf is the configuration of a Session, in a form that can be stored in a YAML file.
//
//	url: rtsp://myhost:8554/mystream
//	timeout: 5s
//	userAgent: myagent
//	tunnel: websocket
type Conf struct {
	URL            string        `yaml:"url"`
	Timeout        time.Duration `yaml:"timeout"`
	ConnectTimeout time.Duration `yaml:"connectTimeout"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	UserAgent      string        `yaml:"userAgent"`
	Tunnel         string        `yaml:"tunnel"`
}

// ParseConf decodes a YAML configuration.
// Unknown keys are rejected.
func ParseConf(byts []byte) (*Conf, error) {
	dec := yaml.NewDecoder(bytes.NewReader(byts))
	dec.KnownFields(true)

	var conf Conf
	err := dec.Decode(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to parse configuration: %w", err)
	}

	return &conf, nil
}

// LoadConf reads a YAML configuration from a file.
func LoadConf(fpath string) (*Conf, error) {
	byts, err := os.ReadFile(fpath)
	if err != nil {
		return nil, fmt.Errorf("unable to read configuration: %w", err)
	}

	return ParseConf(byts)
}

// Builder returns a Builder filled with the configuration.
func (c Conf) Builder() (*Builder, error) {
	tunnel, err := parseTunnel(c.Tunnel)
	if err != nil {
		return nil, err
	}

	b := NewBuilder().
		URL(c.URL).
		Timeout(c.Timeout).
		ConnectTimeout(c.ConnectTimeout).
		ReadTimeout(c.ReadTimeout).
		WriteTimeout(c.WriteTimeout).
		UserAgent(c.UserAgent).
		Tunnel(tunnel)

	if c.Username != "" {
		b.Credentials(c.Username, c.Password)
	}

	return b, nil
}
