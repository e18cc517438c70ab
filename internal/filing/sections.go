package filing

import "strings"

// SectionInfo describes one extractable item of a filing kind.
type SectionInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// vocabulary holds the item codes accepted by the extraction provider.
var vocabulary = map[Kind][]SectionInfo{
	Kind10K: {
		{"1", "Business"},
		{"1A", "Risk Factors"},
		{"1B", "Unresolved Staff Comments"},
		{"1C", "Cybersecurity"},
		{"2", "Properties"},
		{"3", "Legal Proceedings"},
		{"4", "Mine Safety Disclosures"},
		{"5", "Market for Registrant's Common Equity"},
		{"6", "Selected Financial Data (prior to February 2021)"},
		{"7", "Management's Discussion and Analysis"},
		{"7A", "Quantitative and Qualitative Disclosures about Market Risk"},
		{"8", "Financial Statements and Supplementary Data"},
		{"9", "Changes in and Disagreements with Accountants"},
		{"9A", "Controls and Procedures"},
		{"9B", "Other Information"},
		{"10", "Directors, Executive Officers and Corporate Governance"},
		{"11", "Executive Compensation"},
		{"12", "Security Ownership of Certain Beneficial Owners"},
		{"13", "Certain Relationships and Related Transactions"},
		{"14", "Principal Accountant Fees and Services"},
		{"15", "Exhibits and Financial Statement Schedules"},
	},
	Kind10Q: {
		{"part1item1", "Financial Statements"},
		{"part1item2", "Management's Discussion and Analysis"},
		{"part1item3", "Quantitative and Qualitative Disclosures About Market Risk"},
		{"part1item4", "Controls and Procedures"},
		{"part2item1", "Legal Proceedings"},
		{"part2item1a", "Risk Factors"},
		{"part2item2", "Unregistered Sales of Equity Securities and Use of Proceeds"},
		{"part2item3", "Defaults Upon Senior Securities"},
		{"part2item4", "Mine Safety Disclosures"},
		{"part2item5", "Other Information"},
		{"part2item6", "Exhibits"},
	},
	Kind8K: {
		{"1-1", "Entry into a Material Definitive Agreement"},
		{"1-2", "Termination of a Material Definitive Agreement"},
		{"1-3", "Bankruptcy or Receivership"},
		{"1-4", "Mine Safety"},
		{"2-1", "Completion of Acquisition or Disposition of Assets"},
		{"2-2", "Results of Operations and Financial Condition"},
		{"2-3", "Creation of a Direct Financial Obligation"},
		{"2-4", "Triggering Events That Accelerate or Increase a Direct Financial Obligation"},
		{"2-5", "Cost Associated with Exit or Disposal Activities"},
		{"2-6", "Material Impairments"},
		{"3-1", "Notice of Delisting or Failure to Satisfy a Continued Listing Rule"},
		{"3-2", "Unregistered Sales of Equity Securities"},
		{"3-3", "Material Modifications to Rights of Security Holders"},
		{"4-1", "Changes in Registrant's Certifying Accountant"},
		{"4-2", "Non-Reliance on Previously Issued Financial Statements"},
		{"5-1", "Changes in Control of Registrant"},
		{"5-2", "Departure/Election of Directors or Officers"},
		{"5-3", "Amendments to Articles of Incorporation or Bylaws"},
		{"5-4", "Temporary Suspension of Trading Under Employee Benefit Plans"},
		{"5-5", "Amendments to the Code of Ethics"},
		{"5-6", "Change in Shell Company Status"},
		{"5-7", "Submission of Matters to a Vote of Security Holders"},
		{"5-8", "Shareholder Director Nominations"},
		{"6-1", "ABS Informational and Computational Material"},
		{"7-1", "Regulation FD Disclosure"},
		{"8-1", "Other Events"},
		{"9-1", "Financial Statements and Exhibits"},
		{"signature", "Signature"},
	},
}

// Sections returns the extractable items for kind, or nil for an unknown kind.
func Sections(kind Kind) []SectionInfo {
	items, ok := vocabulary[kind]
	if !ok {
		return nil
	}
	out := make([]SectionInfo, len(items))
	copy(out, items)
	return out
}

// Vocabulary returns the extractable items of every kind keyed by kind name.
func Vocabulary() map[string][]SectionInfo {
	out := make(map[string][]SectionInfo, len(vocabulary))
	for kind := range vocabulary {
		out[string(kind)] = Sections(kind)
	}
	return out
}

// CanonicalSectionID returns the vocabulary spelling of id for kind, matched
// without regard to case. Ids outside the vocabulary are returned unchanged.
func CanonicalSectionID(kind Kind, id string) string {
	for _, item := range vocabulary[kind] {
		if strings.EqualFold(item.ID, id) {
			return item.ID
		}
	}
	return id
}
