package scraper

import "strings"

// DetectVariant: мобильная вёрстка тогда и только тогда, когда URL содержит mobileDomain
func DetectVariant(url, mobileDomain string) Variant {
	if mobileDomain != "" && strings.Contains(url, mobileDomain) {
		return VariantMobile
	}
	return VariantDesktop
}
