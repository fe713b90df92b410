package grammar

import "github.com/dlclark/regexp2"

// Building blocks of the journal numeration grammar: volume, year and
// page, in the orders they are written in practice.
const (
	numSep          = `\s*[,\s:-]\s*`
	numStart        = `\s*[,\s:-]?\s*`
	numTitleTag     = `(?<title_tag><cds\.JOURNAL>[^<]*</cds\.JOURNAL>)`
	volSubNumber    = `[Nn][oO°]\.?\s*\d{1,6}`
	volSubNumberOpt = `(?:` + numSep + `(?<vol_sub>` + volSubNumber + `))?`
	volPrefix       = `(?:[Vv]o?l?\.?|[Nn][oO°]\.?)`
	volSuffix       = `(?:\s*\(\d{1,2}(?:-\d)?\))?`
	volNum          = `\d+|(?:(?<!\w)[XxVvIi]+(?!\w))`
	volID           = `(?<vol>` +
		`(?:(?:[A-Za-z]\s*[,\s:-]?\s*)?(?<vol_num>` + volNum + `))` +
		`|(?:(?<vol_num_alt>` + volNum + `)(?:[A-Za-z]))` +
		`|(?:(?:[A-Za-z]\s?)?(?<vol_num_alt2>\d+)\s*-\s*(?:[A-Za-z]\s?)?\d+))`
	volCheck = `(?<![/\d])`
	volume   = `\b` + volPrefix + `?\s*` + volCheck + volID + volSuffix

	shortMonth = `(?:(?:[Jj]an|[Ff]eb|[Mm]ar|[Aa]pr|[Mm]ay|[Jj]un|[Jj]ul|[Aa]ug|[Ss]ep|[Oo]ct|[Nn]ov|[Dd]ec)\.?)`
	month      = `(?:(?:[Jj]anuary|[Ff]ebruary|[Mm]arch|[Aa]pril|[Mm]ay|[Jj]une|[Jj]uly|[Aa]ugust|[Ss]eptember|[Oo]ctober|[Nn]ovember|[Dd]ecember)\.?)`
	yearText   = `(?<year>[A-Za-z]?(?:19|20)\d{2})(?:[A-Za-z]?)`
	year       = `\(?(?:` + shortMonth + `[,\s]\s*)?(?:` + month + `[,\s]\s*)?(?<!\d)` + yearText + `(?!\d)\)?`

	pagePrefix = `[pP]?p?\.?\s?`
	pageNum    = `[RL]?\w?\d+[cC]?`
	pageSep    = `\s*-\s*`
	jinstPage  = `(?<jinst_page>[pP]\d{5}\d*)`
	page       = `(?:` + jinstPage + `|` + pagePrefix + `(?<page>` + pageNum + `)(?:` + pageSep + `(?<page_end>` + pageNum + `))?)`

	series                = `(?<series>[A-H])`
	sepOrParenthesis      = `(?:` + numSep + `|(?=\())`
	sepOrAfterParenthesis = `(?:` + numSep + `|(?<=\)))`
	nucPhysSubtitle       = `(?:[(\[]\s*(?:[Ff][Ss]|[Pp][Mm])\s*\d{0,4}\s*[)\]])`
	nucPhysSubtitleOpt    = `(?:` + numSep + nucPhysSubtitle + `)?`
)

// Numeration lists the patterns tried, in order, on the text that follows
// a recognised journal title. They only match at the start of the text.
var Numeration = []*regexp2.Regexp{
	// vol, page, year
	anchored(numStart+volume+volSubNumberOpt+numSep+page+sepOrParenthesis+year, none),
	// vol, [FS], page, year
	anchored(numStart+volume+volSubNumberOpt+numSep+nucPhysSubtitle+numSep+page+sepOrParenthesis+year, none),
	// [FS], vol, page, year
	anchored(numStart+nucPhysSubtitle+numSep+volume+numSep+page+sepOrParenthesis+year, none),
	// vol, sub-volume, [FS], year, page
	anchored(numStart+volume+volSubNumberOpt+nucPhysSubtitleOpt+sepOrParenthesis+year+sepOrAfterParenthesis+page, none),
	// vol, [FS], year, sub-volume, page
	anchored(numStart+volume+nucPhysSubtitleOpt+sepOrParenthesis+year+volSubNumberOpt+numSep+page, none),
	// vol, year, page
	anchored(numStart+volume+sepOrParenthesis+year+sepOrAfterParenthesis+page, none),
	// [FS], vol, year, page
	anchored(numStart+nucPhysSubtitle+numSep+volume+sepOrParenthesis+year+sepOrAfterParenthesis+page, none),
	// vol, [FS], series, year, page
	anchored(numStart+volume+nucPhysSubtitleOpt+numSep+series+sepOrParenthesis+year+sepOrAfterParenthesis+page, none),
	// vol, series, [FS], page, year
	anchored(numStart+volume+numSep+series+nucPhysSubtitleOpt+numSep+page+numSep+year, none),
	// vol, [FS], series, page, year
	anchored(numStart+volume+nucPhysSubtitleOpt+numSep+series+numSep+page+numSep+year, none),
	// year, vol, page
	anchored(numStart+year+sepOrAfterParenthesis+volume+numSep+page, none),
}

// NumerationAround lists the fallback patterns tried when numeration does
// not directly follow the title: the title tag is part of the pattern and
// the year may precede it. Group "aftertitle" spans what follows the tag.
var NumerationAround = []*regexp2.Regexp{
	mustCompile(year+numSep+numTitleTag+`(?<aftertitle>`+numSep+volume+numSep+page+`)`, none),
	mustCompile(year+numSep+numTitleTag+`(?<aftertitle>`+numSep+volume+numSep+series+numSep+page+`)`, none),
	mustCompile(numTitleTag+`(?<aftertitle>`+numSep+volume+numSep+page+`)`, none),
	mustCompile(numTitleTag+`(?<aftertitle>`+numSep+year+`\s*[.,\s:]\s*`+volume+numSep+page+`)`, none),
}
