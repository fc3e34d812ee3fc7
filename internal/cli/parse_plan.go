package cli

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gymlog/internal/services"
)

func newParsePlanCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "parse-plan <image-file>",
		Short: "Read a weekly workout plan from a screenshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataURL, err := imageDataURL(args[0])
			if err != nil {
				return err
			}
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			_, _, parser, _ := newServices(cfg, opts.logger)
			plan, err := parser.Parse(cmd.Context(), dataURL)
			if errors.Is(err, services.ErrNotPlan) {
				return errors.New("image does not look like a weekly workout schedule")
			}
			if err != nil {
				return fmt.Errorf("parse plan: %w", err)
			}
			return printJSON(cmd, plan)
		},
	}
}

// imageDataURL reads an image file into a base64 data URL.
func imageDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%s is not an image (%s)", path, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
