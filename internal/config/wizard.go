package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to nlpdemo! Let's point it at your model server.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Backend URL.
	backendPrompt := promptui.Prompt{
		Label:   "Model server URL",
		Default: cfg.BackendURL,
		Validate: func(s string) error {
			u, err := url.Parse(s)
			if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
				return fmt.Errorf("enter an http(s) URL")
			}
			return nil
		},
	}
	backendURL, err := backendPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("backend url: %w", err)
	}
	cfg.BackendURL = backendURL

	// 2. Port.
	portPrompt := promptui.Prompt{
		Label:   "Port for the demo server",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	// 3. Saliency colormap for paired inputs.
	cmapPrompt := promptui.Select{
		Label: "Colormap for paired-input saliency maps",
		Items: []string{"RdBu", "copper", "greys"},
	}
	_, cmap, err := cmapPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("colormap selection: %w", err)
	}
	cfg.Saliency.PairedColormap = cmap

	// 4. Demos to mount.
	demosPrompt := promptui.Prompt{
		Label:   "Demos to enable (comma-separated globs)",
		Default: strings.Join(cfg.EnabledDemos, ","),
	}
	demosStr, err := demosPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("enabled demos: %w", err)
	}
	if patterns := splitAndTrim(demosStr); len(patterns) > 0 {
		cfg.EnabledDemos = patterns
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and drops empty entries.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
