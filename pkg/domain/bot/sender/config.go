package sender

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/WETTENTLLC/DelaneNails/pkg/utils/errs"
)

// ProcessorConfig values should be loaded from .env file.
type ProcessorConfig struct {
	Token     string
	channelID string
}

func NewProcessorConfig(token, channelID string) (ProcessorConfig, error) {
	if token == "" {
		return ProcessorConfig{}, errs.New("empty token")
	}
	if channelID == "" {
		return ProcessorConfig{}, errs.New("empty channel id")
	}
	return ProcessorConfig{Token: token, channelID: channelID}, nil
}

func (c *ProcessorConfig) LoadFromEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errs.New("failed to load .env").Wrap(err)
	}

	cfg, err := NewProcessorConfig(os.Getenv("TG_TOKEN"), os.Getenv("TG_CHANNEL_ID"))
	if err != nil {
		return err
	}
	*c = cfg
	return nil
}

func (c ProcessorConfig) ChannelID() string { return c.channelID }
