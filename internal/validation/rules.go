package validation

import "github.com/Lllllllleong/secfilingflow/internal/filing"

// DefaultRules returns markers for the well-known sections of each kind.
// Item headers are listed with their trailing punctuation so that "ITEM 1."
// does not match "ITEM 1A." or "ITEM 10.".
func DefaultRules() Rules {
	return Rules{
		filing.Kind10K: {
			"1":  {"ITEM 1.", "ITEM 1:", "ITEM 1 -", "ITEM 1 BUSINESS", "ITEM 1. BUSINESS"},
			"1A": {"ITEM 1A", "RISK FACTORS"},
			"1B": {"ITEM 1B", "UNRESOLVED STAFF COMMENTS"},
			"1C": {"ITEM 1C", "CYBERSECURITY"},
			"2":  {"ITEM 2.", "ITEM 2:", "PROPERTIES"},
			"3":  {"ITEM 3.", "ITEM 3:", "LEGAL PROCEEDINGS"},
			"4":  {"ITEM 4.", "ITEM 4:", "MINE SAFETY"},
			"5":  {"ITEM 5.", "ITEM 5:", "MARKET FOR REGISTRANT", "MARKET FOR THE REGISTRANT"},
			"6":  {"ITEM 6.", "ITEM 6:", "SELECTED FINANCIAL DATA", "[RESERVED]"},
			"7":  {"ITEM 7.", "ITEM 7:", "MANAGEMENT'S DISCUSSION", "MANAGEMENT’S DISCUSSION"},
			"7A": {"ITEM 7A", "QUANTITATIVE AND QUALITATIVE DISCLOSURES"},
			"8":  {"ITEM 8.", "ITEM 8:", "FINANCIAL STATEMENTS AND SUPPLEMENTARY DATA"},
			"9":  {"ITEM 9.", "ITEM 9:", "CHANGES IN AND DISAGREEMENTS"},
			"9A": {"ITEM 9A", "CONTROLS AND PROCEDURES"},
			"9B": {"ITEM 9B", "OTHER INFORMATION"},
			"10": {"ITEM 10", "DIRECTORS, EXECUTIVE OFFICERS"},
			"11": {"ITEM 11", "EXECUTIVE COMPENSATION"},
			"12": {"ITEM 12", "SECURITY OWNERSHIP"},
			"13": {"ITEM 13", "CERTAIN RELATIONSHIPS"},
			"14": {"ITEM 14", "PRINCIPAL ACCOUNT"},
			"15": {"ITEM 15", "EXHIBITS"},
		},
		filing.Kind10Q: {
			"part1item1":  {"FINANCIAL STATEMENTS", "BALANCE SHEET"},
			"part1item2":  {"MANAGEMENT'S DISCUSSION", "MANAGEMENT’S DISCUSSION"},
			"part1item3":  {"QUANTITATIVE AND QUALITATIVE"},
			"part1item4":  {"CONTROLS AND PROCEDURES"},
			"part2item1":  {"LEGAL PROCEEDINGS"},
			"part2item1a": {"RISK FACTORS"},
			"part2item2":  {"UNREGISTERED SALES", "USE OF PROCEEDS"},
			"part2item6":  {"EXHIBITS"},
		},
		filing.Kind8K: {
			"1-1": {"ITEM 1.01", "MATERIAL DEFINITIVE AGREEMENT"},
			"2-2": {"ITEM 2.02", "RESULTS OF OPERATIONS"},
			"5-2": {"ITEM 5.02", "DEPARTURE OF DIRECTORS", "ELECTION OF DIRECTORS"},
			"7-1": {"ITEM 7.01", "REGULATION FD"},
			"8-1": {"ITEM 8.01", "OTHER EVENTS"},
			"9-1": {"ITEM 9.01", "FINANCIAL STATEMENTS AND EXHIBITS"},
		},
	}
}
