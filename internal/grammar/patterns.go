package grammar

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

const (
	none = regexp2.None
	ci   = regexp2.IgnoreCase
)

// Markers recognise a reference line marker such as "[12]", "(3)" or "4.".
// They are tried in order and only match at the start of a line; group
// "mark" holds the marker text.
var Markers = []*regexp2.Regexp{
	anchored(`\s*(?<mark>\[\s*(?<marknum>\d+)\s*\])`, ci),
	anchored(`\s*(?<mark>\[\s*[a-zA-Z:-]+\+?\s?(?:\d{1,4}[A-Za-z:-]?)?\s*\])`, ci),
	anchored(`\s*(?<mark>\{\s*(?<marknum>\d+)\s*\})`, ci),
	anchored(`\s*(?<mark><\s*(?<marknum>\d+)\s*>)`, ci),
	anchored(`\s*(?<mark>\(\s*(?<marknum>\d+)\s*\))`, ci),
	anchored(`\s*(?<mark>(?<marknum>\d+)\s*\.(?!\d))`, ci),
	anchored(`\s*(?<mark>(?<marknum>\d+)\s+)`, ci),
	anchored(`\s*(?<mark>(?<marknum>\d+)\s*\])`, ci),
	anchored(`\s*(?<mark>(?<marknum>\d+)\s*\})`, ci),
	anchored(`\s*(?<mark>(?<marknum>\d+)\s*\))`, ci),
	anchored(`\s*(?<mark>(?<marknum>\d+)\s*>)`, ci),
	anchored(`\s*(?<mark>\[\s*\d+\.\d+\s*\])`, ci),
	anchored(`\s*(?<mark>\[\s*\])`, ci),
	anchored(`\s*(?<mark>\*)`, ci),
}

// Identifiers.
var (
	DOI = mustCompile(`(?:(?:\(?[Dd][Oo][Ii]\s*\)?:?\s*)|(?:https?://(?:dx\.)?doi\.org/))?`+
		`(?<doi>10\.\d{3,7}(?:\.\w+)*(?:/|%2[fF])[\w\-:;()/.<>]+[\w\-:;()/<>])`, ci)

	rawURL  = `(?<url>(?:https?|s?ftp)://(?:[\w.-])+(?::\d{1,5})?(?:/[\w.?=&%~∼+#-]+)*/?)`
	RawURL  = mustCompile(`['"]?`+rawURL+`['"]?`, ci)
	HTMLURL = mustCompile(`<a\s+href\s*=\s*['"]`+rawURL+`['"]\s*>(?<desc>[^<]+)</a>`, ci)

	HDL = mustCompile(`(?:[hH][dD][lL]:|https?://hdl\.handle\.net/)(?<hdl>\S+/\S+)`, none)

	Quoted = mustCompile(`"(?<title>[^"]+)"`, none)
	ISBN   = mustCompile(`(?:ISBN[-– ]*(?:|10|13)|International Standard Book Number)[:\s]*(?<code>[-–0-9Xx]{10,25})`, ci)
)

// Line washing applied before tagging.
var (
	SpaceComma          = mustCompile(`\s,`, none)
	SpaceSemicolon      = mustCompile(`\s;`, none)
	SpacePeriod         = mustCompile(`\s\.`, none)
	ColonSpaceColon     = mustCompile(`:\s:`, none)
	CommaSpaceColon     = mustCompile(`,\s:`, none)
	SpaceClosingBracket = mustCompile(`\s\]`, none)
	OpeningBracketSpace = mustCompile(`\[\s`, none)
	Hyphens             = mustCompile(`[\x{2010}-\x{2015}\x{2212}\x{00AD}]`, none)
	MultipleSpace       = mustCompile(`\s{2,}`, none)

	// Punctuation is blanked out of the upper-cased working line.
	Punctuation = mustCompile(`[.,;'()\-]`, none)

	// AnyTag matches any cds tag, opening or closing.
	AnyTag = mustCompile(`</?cds\.[A-Za-z]+\s?/?>`, none)
	// TaggedSpan matches a whole tagged fragment so it can be blanked out.
	TaggedSpan = mustCompile(`<cds\.(?<name>[A-Za-z]+)>.*?</cds\.\k<name>>`, none)
)

// arXiv identifiers.
var (
	arxivSuffix = `(?<suffix>\[[A-Z.-]+\])?`

	Arxiv5Digits = mustCompile(`ARXIV[\s:-]*(?<year>1[3-9]|[2-8][0-9])-?(?<month>0[1-9]|1[0-2])[\s.-]*(?<num>\d{5})(?!\d)`+
		`(?:[\s-]*V(?<version>\d+))?\s*`+arxivSuffix, ci)
	Arxiv4Digits = mustCompile(`ARXIV[\s:-]*(?<year>\d{2})-?(?<month>\d{2})[\s.-]*(?<num>\d{4})(?!\d)`+
		`(?:[\s-]*V(?<version>\d+))?\s*`+arxivSuffix, ci)
	ArxivNew5Digits = mustCompile(`(?<!ARXIV:)(?<!\d)(?<year>`+yearAlternation(2013, time.Now().Year())+`)(?<month>0[1-9]|1[0-2])\.(?<num>\d{5})(?!\d)`+
		`(?:[\s-]*V(?<version>\d+))?(?!\d)\s*`+arxivSuffix, ci)
	ArxivNew4Digits = mustCompile(`(?<!ARXIV:)(?<!\d)(?<year>`+yearAlternation(1991, time.Now().Year())+`)(?<month>0[1-9]|1[0-2])\.(?<num>\d{4})(?!\d)`+
		`(?:[\s-]*V(?<version>\d+))?(?!\d)\s*`+arxivSuffix, ci)

	// ArxivCatchup rewrites "arXiv:0901.123 [hep-th]" into an old-style
	// identifier so the old-style patterns can pick it up.
	ArxivCatchup = mustCompile(`ARXIV[\s:-]*(?<year>\d{2})-?(?<month>\d{2})[\s.-]*(?<num>\d{3})\s*\[(?<suffix>[A-Z.-]+)\]`, ci)
)

// OldArxiv is one pre-2007 arXiv archive pattern, with the canonical
// archive name to emit when the written form is a variant.
type OldArxiv struct {
	Re      *regexp2.Regexp
	Archive string
}

var oldArxivArchives = []struct{ pattern, archive string }{
	{`acc-ph`, ""},
	{`astro-ph`, ""},
	{`astro-phy`, "astro-ph"},
	{`astro-ph\.[a-z]{2}`, ""},
	{`atom-ph`, ""},
	{`chao-dyn`, ""},
	{`chem-ph`, ""},
	{`cond-mat`, ""},
	{`cs`, ""},
	{`cs\.[a-z]{2}`, ""},
	{`gr-qc`, ""},
	{`hep-ex`, ""},
	{`hep-lat`, ""},
	{`hep-ph`, ""},
	{`hepph`, "hep-ph"},
	{`hep-th`, ""},
	{`hepth`, "hep-th"},
	{`math`, ""},
	{`math\.[a-z]{2}`, ""},
	{`math-ph`, ""},
	{`nlin`, ""},
	{`nlin\.[a-z]{2}`, ""},
	{`nucl-ex`, ""},
	{`nucl-th`, ""},
	{`physics`, ""},
	{`physics\.acc-ph`, ""},
	{`physics\.ao-ph`, ""},
	{`physics\.atm-clus`, ""},
	{`physics\.atom-ph`, ""},
	{`physics\.bio-ph`, ""},
	{`physics\.chem-ph`, ""},
	{`physics\.class-ph`, ""},
	{`physics\.comp-ph`, ""},
	{`physics\.data-an`, ""},
	{`physics\.ed-ph`, ""},
	{`physics\.flu-dyn`, ""},
	{`physics\.gen-ph`, ""},
	{`physics\.geo-ph`, ""},
	{`physics\.hist-ph`, ""},
	{`physics\.ins-det`, ""},
	{`physics\.med-ph`, ""},
	{`physics\.optics`, ""},
	{`physics\.plasm-ph`, ""},
	{`physics\.pop-ph`, ""},
	{`physics\.soc-ph`, ""},
	{`physics\.space-ph`, ""},
	{`plasm-ph`, "physics.plasm-ph"},
	{`q-bio\.[a-z]{2}`, ""},
	{`q-fin\.[a-z]{2}`, ""},
	{`q-alg`, ""},
	{`quant-ph`, ""},
	{`quant-phys`, "quant-ph"},
	{`solv-int`, ""},
	{`stat\.[a-z]{2}`, ""},
	{`stat-mech`, ""},
	{`dg-ga`, ""},
	{`hap-ph`, "hep-ph"},
	{`funct-an`, ""},
	{`quantph`, "quant-ph"},
	{`stro-ph`, "astro-ph"},
	{`hepex`, "hep-ex"},
	{`math-ag`, "math.ag"},
	{`math-dg`, "math.dg"},
	{`nuc-th`, "nucl-th"},
	{`math-ca`, "math.ca"},
	{`nlin-si`, "nlin.si"},
	{`quantum-ph`, "quant-ph"},
	{`ep-ph`, "hep-ph"},
	{`ep-th`, "hep-ph"},
	{`ep-ex`, "hep-ex"},
	{`hept-h`, "hep-th"},
	{`hepp-h`, "hep-ph"},
	{`physi-cs`, "physics"},
	{`asstro-ph`, "astro-ph"},
	{`hep-lt`, "hep-lat"},
	{`he-ph`, "hep-ph"},
	{`het-ph`, "hep-ph"},
	{`mat-ph`, "math.th"},
	{`math-th`, "math.th"},
	{`ucl-th`, "nucl-th"},
	{`nnucl-th`, "nucl-th"},
	{`nuclt-th`, "nucl-th"},
	{`atro-ph`, "astro-ph"},
	{`qnant-ph`, "quant-ph"},
	{`astr-ph`, "astro-ph"},
	{`math-qa`, "math.qa"},
	{`tro-ph`, "astro-ph"},
	{`hucl-th`, "nucl-th"},
	{`math-gt`, "math.gt"},
	{`math-nt`, "math.nt"},
	{`math-ct`, "math.ct"},
	{`math-oa`, "math.oa"},
	{`math-sg`, "math.sg"},
	{`math-ap`, "math.ap"},
	{`quan-ph`, "quant-ph"},
	{`nlin-cd`, "nlin.cd"},
	{`math-sp`, "math.sp"},
	{`ast-ph`, "astro-ph"},
	{`asyro-ph`, "astro-ph"},
	{`aastro-ph`, "astro-ph"},
	{`astrop-ph`, "astro-ph"},
	{`arxivastrop-ph`, "astro-ph"},
	{`hept-th`, "hep-th"},
	{`quan-th`, "quant-th"},
	{`asro-ph`, "astro-ph"},
	{`castro-ph`, "astro-ph"},
	{`asaastro-ph`, "astro-ph"},
	{`hhep-ph`, "hep-ph"},
	{`hhep-ex`, "hep-ex"},
	{`alg-geom`, ""},
	{`nuclth`, "nucl-th"},
}

// OldArxivPatterns are tried in order over a line.
var OldArxivPatterns = func() []OldArxiv {
	out := make([]OldArxiv, 0, len(oldArxivArchives))
	for _, a := range oldArxivArchives {
		re := mustCompile(`(?<!<cds\.ARXIV>)(?<!<cds\.REPORTNUMBER>)(?<!\w)(?<name>`+a.pattern+`)`+
			`[|/:\s-]?(?<num>(?:9[1-9]|0[0-7])(?:0[1-9]|1[0-2])\d{3})(?:v\d{1,3})?(?=[^\w]|$)`, ci)
		out = append(out, OldArxiv{Re: re, Archive: a.archive})
	}
	return out
}()

func yearAlternation(from, to int) string {
	var years []string
	for y := from; y <= to; y++ {
		years = append(years, fmt.Sprintf("%02d", y%100))
	}
	return strings.Join(years, "|")
}

// Proceedings of Science and ATLAS notes.
var (
	posSep     = `\s*[,\s:-]\s*`
	posSepOpt  = `\s*[,\s:-]?\s*`
	posYear    = `(?<year>\s(?:19|20)\d{2}\s|\((?:19|20)\d{2}\))`
	posVolume  = `(?<volume_name>\w{1,10})` + posSepOpt + `(?<volume_num>(?:19|20)\d{2})`
	posVolPar  = `\(` + posVolume + `\)`
	posPage    = `(?<page>\d{1,4})`
	posTitle   = `POS`
	PoSPattern = []*regexp2.Regexp{
		mustCompile(posTitle+posSepOpt+posYear+posSep+posVolume+posSep+posPage, ci),
		mustCompile(posTitle+posSep+posVolume+posSepOpt+posYear+posSepOpt+posPage, ci),
		mustCompile(posTitle+posSep+posVolume+posSep+posPage+posSepOpt+posYear, ci),
		mustCompile(posTitle+posSepOpt+posVolPar+posSepOpt+posPage, ci),
	}

	AtlasConfPre2010  = mustCompile(`(?<!\w:)ATL(?:AS)?-CONF-(?<code>(?:200\d|99)-\d{3})(?![\w\d])`, none)
	AtlasConfPost2010 = mustCompile(`(?<!\w:)ATL(?:AS)?-CONF-(?<code>20[1-9]\d-\d{3})(?![\w\d])`, none)
)

// Ibid matches an ibid reference in the upper-cased working line.
var Ibid = mustCompile(`(?:-|\b)?IBID(?:EM)?\.?`, none)

// Tagged-line grammar consumed by the parser.
var (
	TaggedCitation = mustCompile(`<cds\.(?<tag>(?:JOURNAL(?<ibid>ibid)?)|VOL|YR|PG|REPORTNUMBER|ARXIV|SER|URL|DOI|QUOTED|ISBN|PUBLISHER|COLLABORATION|AUTH(?:stnd|etal|incl))(?:\s/)?>`, none)

	NumerationTitlePlusSeries = anchored(`\s*[.,]?\s*(?:Ser\.\s*)?(?<series>[A-H]|I{1,3}V?|VI{0,3})?\s*:?\s*`+
		`<cds\.VOL>(?<vol>[^<]+)</cds\.VOL>\s*(?: <cds\.YR>\((?<yr>[^<]+)\)</cds\.YR>)?\s*(?: <cds\.PG>(?<pg>[^<]+)</cds\.PG>)`, none)

	NumerationNoIbid = anchored(`(?:\s*;\s*|\s+and\s+)(?<series>[A-H]|I{1,3}V?|VI{0,3})?\s*:?\s`+
		`<cds\.VOL>(?<vol>\d+|\d+-\d+)</cds\.VOL>\s<cds\.YR>\((?<yr>[12]\d{3})\)</cds\.YR>\s<cds\.PG>(?<pg>[RL]?\d+c?)</cds\.PG>`, none)

	SeriesBeforeVolume = anchored(`(?<series>[A-Za-z])\s*[,\s:-]?\s*\d+`, none)
	SeriesAfterVolume  = anchored(`\d+\s*[,\s:-]?\s*(?<series>[A-Z])`, none)

	WashVolumeTag    = mustCompile(`<cds\.VOL>(?<series>\w) (?<num>\d+)</cds\.VOL>`, none)
	BoldBeforeVolume = mustCompile(` bf (?<rest>(?:\w )?: <cds\.VOL>)`, none)

	YearInMisc = mustCompile(`(?<![\d])(?:19|20)\d{2}(?![\d])`, none)
)
