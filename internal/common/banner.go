package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and logs the effective settings.
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.PrintSimple("Intrinsic", GetVersion())

	logger.Info().
		Str("version", GetFullVersion()).
		Float64("discount_rate", config.Valuation.DiscountRate).
		Float64("growth_rate", config.Valuation.GrowthRate).
		Int("history_years", config.Valuation.HistoryYears).
		Strs("formats", config.Report.Formats).
		Str("report_dir", config.Report.Dir).
		Bool("cache", config.Cache.Enabled).
		Msg("Intrinsic starting")
}
