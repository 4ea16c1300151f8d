package extract

import (
	"regexp"
	"strings"
)

// ContractInfo is the descriptive header printed on the first page of a
// free-text schedule. Every field is optional.
type ContractInfo struct {
	HCRNumber            string `json:"hcr_number,omitempty"`
	Destination          string `json:"destination,omitempty"`
	SupplierName         string `json:"supplier_name,omitempty"`
	SupplierPhone        string `json:"supplier_phone,omitempty"`
	SupplierEmail        string `json:"supplier_email,omitempty"`
	EstimatedAnnualMiles string `json:"estimated_annual_miles,omitempty"`
	EstimatedAnnualHours string `json:"estimated_annual_hours,omitempty"`
}

var (
	hcrLineRe     = regexp.MustCompile(`(?i)^hcr\s*(?:#|no\.?|number|contract(?:\s*(?:#|no\.?|number))?)?\s*:?\s*([A-Z0-9][\w-]*)\s*(.*)$`)
	supplierRe    = regexp.MustCompile(`(?i)\bsupplier(?:\s*name)?\s*:\s*(.+?)(?:\s{2,}|$)`)
	phoneRe       = regexp.MustCompile(`\(?\b(\d{3})\)?[\s.-]?(\d{3})[\s.-](\d{4})\b`)
	emailRe       = regexp.MustCompile(`[\w.+-]+@[\w-]+(?:\.[\w-]+)+`)
	annualMilesRe = regexp.MustCompile(`(?i)annual\s+(?:schedule\s+)?miles\s*:\s*([\d,.]+)`)
	annualHoursRe = regexp.MustCompile(`(?i)annual\s+(?:schedule\s+)?hours\s*:\s*([\d,.]+)`)
)

// parseContractInfo scans the lines before the first trip block.
func parseContractInfo(lines []string) ContractInfo {
	var info ContractInfo
	for _, l := range lines {
		if tripStartRe.MatchString(l) {
			break
		}
		if m := hcrLineRe.FindStringSubmatch(l); m != nil && info.HCRNumber == "" && hasDigit.MatchString(m[1]) {
			info.HCRNumber = m[1]
			info.Destination = strings.TrimSpace(m[2])
			continue
		}
		if m := supplierRe.FindStringSubmatch(l); m != nil && info.SupplierName == "" {
			info.SupplierName = strings.TrimSpace(m[1])
		}
		if m := phoneRe.FindStringSubmatch(l); m != nil && info.SupplierPhone == "" {
			info.SupplierPhone = m[1] + "-" + m[2] + "-" + m[3]
		}
		if m := emailRe.FindString(l); m != "" && info.SupplierEmail == "" {
			info.SupplierEmail = m
		}
		if m := annualMilesRe.FindStringSubmatch(l); m != nil {
			info.EstimatedAnnualMiles = cleanNumber(m[1])
		}
		if m := annualHoursRe.FindStringSubmatch(l); m != nil {
			info.EstimatedAnnualHours = cleanNumber(m[1])
		}
	}
	return info
}
