package geo

import (
	"sort"
	"strings"
)

// Country is one canonical answer. The map key in countryTable is the
// lowercase name the geocoder returns for it.
type Country struct {
	Name    string
	Code    string // ISO 3166-1 alpha-2
	Aliases []string
}

// Flag builds the regional-indicator emoji for the country code.
func (c Country) Flag() string {
	if len(c.Code) != 2 {
		return ""
	}
	var b strings.Builder
	for _, r := range strings.ToUpper(c.Code) {
		if r < 'A' || r > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + (r - 'A'))
	}
	return b.String()
}

var countryTable = map[string]Country{
	"united states":            {"United States", "US", []string{"usa", "us", "united states of america", "america", "states"}},
	"canada":                   {"Canada", "CA", nil},
	"mexico":                   {"Mexico", "MX", []string{"méxico"}},
	"guatemala":                {"Guatemala", "GT", nil},
	"costa rica":               {"Costa Rica", "CR", nil},
	"panama":                   {"Panama", "PA", []string{"panamá"}},
	"dominican republic":       {"Dominican Republic", "DO", []string{"dr", "dominican rep"}},
	"dominica":                 {"Dominica", "DM", nil},
	"puerto rico":              {"Puerto Rico", "PR", []string{"pr"}},
	"us virgin islands":        {"US Virgin Islands", "VI", []string{"usvi", "virgin islands", "united states virgin islands"}},
	"bermuda":                  {"Bermuda", "BM", nil},
	"curaçao":                  {"Curaçao", "CW", []string{"curacao"}},
	"greenland":                {"Greenland", "GL", nil},
	"colombia":                 {"Colombia", "CO", nil},
	"ecuador":                  {"Ecuador", "EC", nil},
	"peru":                     {"Peru", "PE", []string{"perú"}},
	"bolivia":                  {"Bolivia", "BO", nil},
	"brazil":                   {"Brazil", "BR", []string{"brasil"}},
	"chile":                    {"Chile", "CL", nil},
	"argentina":                {"Argentina", "AR", nil},
	"uruguay":                  {"Uruguay", "UY", nil},
	"paraguay":                 {"Paraguay", "PY", nil},
	"venezuela":                {"Venezuela", "VE", nil},
	"united kingdom":           {"United Kingdom", "GB", []string{"uk", "great britain", "britain", "england", "scotland", "wales", "gb"}},
	"ireland":                  {"Ireland", "IE", []string{"eire", "republic of ireland"}},
	"isle of man":              {"Isle of Man", "IM", nil},
	"jersey":                   {"Jersey", "JE", nil},
	"france":                   {"France", "FR", nil},
	"spain":                    {"Spain", "ES", []string{"españa", "espana"}},
	"portugal":                 {"Portugal", "PT", nil},
	"andorra":                  {"Andorra", "AD", nil},
	"germany":                  {"Germany", "DE", []string{"deutschland"}},
	"netherlands":              {"Netherlands", "NL", []string{"the netherlands", "holland", "nl"}},
	"belgium":                  {"Belgium", "BE", nil},
	"luxembourg":               {"Luxembourg", "LU", nil},
	"switzerland":              {"Switzerland", "CH", []string{"swiss"}},
	"liechtenstein":            {"Liechtenstein", "LI", nil},
	"austria":                  {"Austria", "AT", nil},
	"italy":                    {"Italy", "IT", []string{"italia"}},
	"san marino":               {"San Marino", "SM", nil},
	"monaco":                   {"Monaco", "MC", nil},
	"malta":                    {"Malta", "MT", nil},
	"denmark":                  {"Denmark", "DK", nil},
	"faroe islands":            {"Faroe Islands", "FO", []string{"faroes", "faroe"}},
	"norway":                   {"Norway", "NO", nil},
	"svalbard and jan mayen":   {"Svalbard", "SJ", []string{"svalbard"}},
	"sweden":                   {"Sweden", "SE", nil},
	"finland":                  {"Finland", "FI", nil},
	"åland islands":            {"Åland Islands", "AX", []string{"aland", "åland", "aland islands"}},
	"iceland":                  {"Iceland", "IS", nil},
	"estonia":                  {"Estonia", "EE", nil},
	"latvia":                   {"Latvia", "LV", nil},
	"lithuania":                {"Lithuania", "LT", nil},
	"poland":                   {"Poland", "PL", []string{"polska"}},
	"czechia":                  {"Czechia", "CZ", []string{"czech republic", "czech"}},
	"slovakia":                 {"Slovakia", "SK", nil},
	"hungary":                  {"Hungary", "HU", nil},
	"slovenia":                 {"Slovenia", "SI", nil},
	"croatia":                  {"Croatia", "HR", nil},
	"bosnia and herzegovina":   {"Bosnia and Herzegovina", "BA", []string{"bosnia", "bih"}},
	"serbia":                   {"Serbia", "RS", nil},
	"montenegro":               {"Montenegro", "ME", nil},
	"north macedonia":          {"North Macedonia", "MK", []string{"macedonia"}},
	"albania":                  {"Albania", "AL", nil},
	"greece":                   {"Greece", "GR", nil},
	"bulgaria":                 {"Bulgaria", "BG", nil},
	"romania":                  {"Romania", "RO", nil},
	"ukraine":                  {"Ukraine", "UA", nil},
	"russia":                   {"Russia", "RU", []string{"russian federation"}},
	"türkiye":                  {"Türkiye", "TR", []string{"turkey", "turkiye"}},
	"cyprus":                   {"Cyprus", "CY", nil},
	"georgia":                  {"Georgia", "GE", nil},
	"armenia":                  {"Armenia", "AM", nil},
	"israel":                   {"Israel", "IL", nil},
	"palestinian territory":    {"Palestine", "PS", []string{"palestine", "west bank"}},
	"jordan":                   {"Jordan", "JO", nil},
	"lebanon":                  {"Lebanon", "LB", nil},
	"united arab emirates":     {"United Arab Emirates", "AE", []string{"uae", "emirates"}},
	"qatar":                    {"Qatar", "QA", nil},
	"oman":                     {"Oman", "OM", nil},
	"kazakhstan":               {"Kazakhstan", "KZ", nil},
	"kyrgyzstan":               {"Kyrgyzstan", "KG", nil},
	"mongolia":                 {"Mongolia", "MN", nil},
	"india":                    {"India", "IN", nil},
	"pakistan":                 {"Pakistan", "PK", nil},
	"bangladesh":               {"Bangladesh", "BD", nil},
	"sri lanka":                {"Sri Lanka", "LK", nil},
	"nepal":                    {"Nepal", "NP", nil},
	"bhutan":                   {"Bhutan", "BT", nil},
	"thailand":                 {"Thailand", "TH", nil},
	"cambodia":                 {"Cambodia", "KH", nil},
	"laos":                     {"Laos", "LA", nil},
	"vietnam":                  {"Vietnam", "VN", []string{"viet nam"}},
	"malaysia":                 {"Malaysia", "MY", nil},
	"singapore":                {"Singapore", "SG", nil},
	"indonesia":                {"Indonesia", "ID", nil},
	"philippines":              {"Philippines", "PH", []string{"the philippines"}},
	"taiwan":                   {"Taiwan", "TW", nil},
	"japan":                    {"Japan", "JP", nil},
	"south korea":              {"South Korea", "KR", []string{"korea", "republic of korea"}},
	"china":                    {"China", "CN", nil},
	"hong kong":                {"Hong Kong", "HK", nil},
	"macao":                    {"Macao", "MO", []string{"macau"}},
	"australia":                {"Australia", "AU", nil},
	"christmas island":         {"Christmas Island", "CX", nil},
	"new zealand":              {"New Zealand", "NZ", []string{"nz", "aotearoa"}},
	"guam":                     {"Guam", "GU", nil},
	"northern mariana islands": {"Northern Mariana Islands", "MP", []string{"northern marianas", "cnmi"}},
	"american samoa":           {"American Samoa", "AS", nil},
	"south africa":             {"South Africa", "ZA", []string{"rsa"}},
	"lesotho":                  {"Lesotho", "LS", nil},
	"eswatini":                 {"Eswatini", "SZ", []string{"swaziland"}},
	"botswana":                 {"Botswana", "BW", nil},
	"namibia":                  {"Namibia", "NA", nil},
	"madagascar":               {"Madagascar", "MG", nil},
	"réunion":                  {"Réunion", "RE", []string{"reunion"}},
	"kenya":                    {"Kenya", "KE", nil},
	"uganda":                   {"Uganda", "UG", nil},
	"rwanda":                   {"Rwanda", "RW", nil},
	"tanzania":                 {"Tanzania", "TZ", nil},
	"nigeria":                  {"Nigeria", "NG", nil},
	"niger":                    {"Niger", "NE", nil},
	"ghana":                    {"Ghana", "GH", nil},
	"senegal":                  {"Senegal", "SN", nil},
	"mali":                     {"Mali", "ML", nil},
	"tunisia":                  {"Tunisia", "TN", nil},
	"egypt":                    {"Egypt", "EG", nil},
}

// minSubstringKey keeps two- and three-letter aliases ("us", "uk", "rsa")
// out of the containment fallback, where they would match inside longer names.
const minSubstringKey = 4

var (
	countryLookup  map[string]string // alias → canonical key
	substringOrder []string          // lookup keys, longest first
)

func init() {
	countryLookup = make(map[string]string)
	for key, c := range countryTable {
		countryLookup[key] = key
		countryLookup[strings.ToLower(c.Name)] = key
		for _, alias := range c.Aliases {
			countryLookup[strings.ToLower(alias)] = key
		}
	}
	for k := range countryLookup {
		if len(k) >= minSubstringKey {
			substringOrder = append(substringOrder, k)
		}
	}
	sort.Slice(substringOrder, func(i, j int) bool {
		a, b := substringOrder[i], substringOrder[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
}

// NormalizeCountry maps a free-form name to its canonical key: exact alias
// match first, then whole-word containment in either direction.
func NormalizeCountry(name string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(name))
	if q == "" {
		return "", false
	}
	if key, ok := countryLookup[q]; ok {
		return key, true
	}
	for _, k := range substringOrder {
		if containsWord(q, k) || (len(q) >= minSubstringKey && containsWord(k, q)) {
			return countryLookup[k], true
		}
	}
	return "", false
}

// containsWord reports whether sub occurs in s bounded by non-letters, so
// "niger" does not match inside "nigeria".
func containsWord(s, sub string) bool {
	for from := 0; ; {
		i := strings.Index(s[from:], sub)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(sub)
		if (start == 0 || !isLetter(s[start-1])) && (end == len(s) || !isLetter(s[end])) {
			return true
		}
		from = start + 1
	}
}

func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 0x80
}

// LookupCountry returns the table entry for a canonical key or any alias of it.
func LookupCountry(name string) (Country, bool) {
	key, ok := NormalizeCountry(name)
	if !ok {
		return Country{}, false
	}
	return countryTable[key], true
}

// CheckGuess reports whether guess names correct: case-insensitive equality,
// then membership in the alias set of the normalised correct country.
func CheckGuess(guess, correct string) bool {
	g := strings.ToLower(strings.TrimSpace(guess))
	c := strings.ToLower(strings.TrimSpace(correct))
	if g == "" || c == "" {
		return false
	}
	if g == c {
		return true
	}

	key, ok := NormalizeCountry(c)
	if !ok {
		return false
	}
	country := countryTable[key]
	if g == key || g == strings.ToLower(country.Name) {
		return true
	}
	for _, alias := range country.Aliases {
		if strings.ToLower(alias) == g {
			return true
		}
	}
	return false
}
