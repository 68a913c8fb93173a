package initializer

import (
	"io"
	"log/slog"
	"os"

	"github.com/amirasaad/axeria/pkg/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lmittmann/tint"
)

// SetupLogger builds the process logger and installs it as slog's default.
// LOG_FORMAT selects charmbracelet "text" or "json" output, or "tint" for
// compact colored lines.
func SetupLogger(cfg *config.Log, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	var slogger *slog.Logger
	if cfg.Format == "tint" {
		slogger = slog.New(tint.NewHandler(w, &tint.Options{
			Level:      slog.Level(cfg.Level),
			TimeFormat: cfg.TimeFormat,
		}))
	} else {
		slogger = slog.New(newCharmLogger(cfg, w))
	}
	slog.SetDefault(slogger)
	return slogger
}

func newCharmLogger(cfg *config.Log, w io.Writer) *log.Logger {
	styles := log.DefaultStyles()
	infoTxtColor := lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warnTxtColor := lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}
	errorTxtColor := lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF6B6B"}
	debugTxtColor := lipgloss.AdaptiveColor{Light: "#7E57C2", Dark: "#7E57C2"}

	levelStyle := func(icon string, color lipgloss.AdaptiveColor) lipgloss.Style {
		return lipgloss.NewStyle().
			SetString(icon).
			Bold(true).
			Padding(0, 1).
			Foreground(color)
	}
	styles.Levels[log.ErrorLevel] = levelStyle("❌", errorTxtColor)
	styles.Levels[log.InfoLevel] = levelStyle("ℹ️", infoTxtColor)
	styles.Levels[log.WarnLevel] = levelStyle("⚠️", warnTxtColor)
	styles.Levels[log.DebugLevel] = levelStyle("🐛", debugTxtColor)

	keyColors := map[string]lipgloss.AdaptiveColor{
		"error":   errorTxtColor,
		"warn":    warnTxtColor,
		"userID":  infoTxtColor,
		"context": debugTxtColor,
		"type":    debugTxtColor,
	}
	for key, color := range keyColors {
		styles.Keys[key] = lipgloss.NewStyle().Foreground(color)
		styles.Values[key] = lipgloss.NewStyle().Bold(true)
	}

	formattersMap := map[string]log.Formatter{
		"json": log.JSONFormatter,
		"text": log.TextFormatter,
	}
	formatter := log.TextFormatter
	if f, ok := formattersMap[cfg.Format]; ok {
		formatter = f
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           log.Level(cfg.Level),
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	logger.SetStyles(styles)
	return logger
}
