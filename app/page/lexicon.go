package page

// monthEntry maps one localized month name or abbreviation to its month
// number. Entries are kept in a slice so that lookup precedence is explicit:
// when two languages share an abbreviation, the earlier entry wins.
type monthEntry struct {
	name  string
	month int
}

// monthLexicon covers full names and common abbreviations for the Germanic,
// Romance and Cyrillic-script languages the source publishes in, plus a few
// extras seen in captured samples. All entries are lowercase; lookups
// lowercase the token first.
var monthLexicon = []monthEntry{
	// English
	{"january", 1}, {"february", 2}, {"march", 3}, {"april", 4}, {"may", 5},
	{"june", 6}, {"july", 7}, {"august", 8}, {"september", 9}, {"october", 10},
	{"november", 11}, {"december", 12},
	{"jan", 1}, {"feb", 2}, {"mar", 3}, {"apr", 4}, {"jun", 6}, {"jul", 7},
	{"aug", 8}, {"sep", 9}, {"sept", 9}, {"oct", 10}, {"nov", 11}, {"dec", 12},

	// German
	{"januar", 1}, {"februar", 2}, {"märz", 3}, {"mai", 5}, {"juni", 6},
	{"juli", 7}, {"oktober", 10}, {"dezember", 12},
	{"jän", 1}, {"mrz", 3}, {"okt", 10}, {"dez", 12},

	// Dutch
	{"januari", 1}, {"februari", 2}, {"maart", 3}, {"mei", 5}, {"juni", 6},
	{"juli", 7}, {"augustus", 8}, {"oktober", 10}, {"december", 12},
	{"mrt", 3},

	// Danish / Norwegian / Swedish
	{"januar", 1}, {"februar", 2}, {"marts", 3}, {"maj", 5}, {"juni", 6},
	{"juli", 7}, {"august", 8}, {"oktober", 10}, {"desember", 12},
	{"mars", 3}, {"okt", 10}, {"des", 12},

	// Spanish
	{"enero", 1}, {"febrero", 2}, {"marzo", 3}, {"abril", 4}, {"mayo", 5},
	{"junio", 6}, {"julio", 7}, {"agosto", 8}, {"septiembre", 9},
	{"octubre", 10}, {"noviembre", 11}, {"diciembre", 12},
	{"ene", 1}, {"abr", 4}, {"ago", 8}, {"dic", 12},

	// French
	{"janvier", 1}, {"février", 2}, {"mars", 3}, {"avril", 4}, {"mai", 5},
	{"juin", 6}, {"juillet", 7}, {"août", 8}, {"septembre", 9},
	{"octobre", 10}, {"novembre", 11}, {"décembre", 12},
	{"janv", 1}, {"févr", 2}, {"avr", 4}, {"juil", 7}, {"déc", 12},

	// Italian
	{"gennaio", 1}, {"febbraio", 2}, {"aprile", 4}, {"maggio", 5},
	{"giugno", 6}, {"luglio", 7}, {"settembre", 9}, {"ottobre", 10},
	{"dicembre", 12},
	{"gen", 1}, {"mag", 5}, {"giu", 6}, {"lug", 7}, {"set", 9}, {"ott", 10},

	// Portuguese
	{"janeiro", 1}, {"fevereiro", 2}, {"março", 3}, {"maio", 5},
	{"junho", 6}, {"julho", 7}, {"setembro", 9}, {"outubro", 10},
	{"novembro", 11}, {"dezembro", 12},
	{"fev", 2}, {"out", 10},

	// Romanian
	{"ianuarie", 1}, {"februarie", 2}, {"martie", 3}, {"aprilie", 4},
	{"iunie", 6}, {"iulie", 7}, {"septembrie", 9}, {"octombrie", 10},
	{"noiembrie", 11}, {"decembrie", 12},

	// Catalan
	{"gener", 1}, {"febrer", 2}, {"març", 3}, {"maig", 5}, {"juny", 6},
	{"juliol", 7}, {"setembre", 9}, {"desembre", 12},

	// Russian (nominative and genitive)
	{"январь", 1}, {"января", 1}, {"февраль", 2}, {"февраля", 2},
	{"март", 3}, {"марта", 3}, {"апрель", 4}, {"апреля", 4},
	{"май", 5}, {"мая", 5}, {"июнь", 6}, {"июня", 6},
	{"июль", 7}, {"июля", 7}, {"август", 8}, {"августа", 8},
	{"сентябрь", 9}, {"сентября", 9}, {"октябрь", 10}, {"октября", 10},
	{"ноябрь", 11}, {"ноября", 11}, {"декабрь", 12}, {"декабря", 12},
	{"янв", 1}, {"фев", 2}, {"мар", 3}, {"апр", 4}, {"июн", 6},
	{"июл", 7}, {"авг", 8}, {"сен", 9}, {"окт", 10}, {"ноя", 11}, {"дек", 12},

	// Ukrainian
	{"січень", 1}, {"січня", 1}, {"лютий", 2}, {"лютого", 2},
	{"березень", 3}, {"березня", 3}, {"квітень", 4}, {"квітня", 4},
	{"травень", 5}, {"травня", 5}, {"червень", 6}, {"червня", 6},
	{"липень", 7}, {"липня", 7}, {"серпень", 8}, {"серпня", 8},
	{"вересень", 9}, {"вересня", 9}, {"жовтень", 10}, {"жовтня", 10},
	{"листопад", 11}, {"листопада", 11}, {"грудень", 12}, {"грудня", 12},

	// Bulgarian
	{"януари", 1}, {"февруари", 2}, {"април", 4}, {"юни", 6}, {"юли", 7},
	{"септември", 9}, {"октомври", 10}, {"ноември", 11}, {"декември", 12},

	// Polish
	{"styczeń", 1}, {"stycznia", 1}, {"luty", 2}, {"lutego", 2},
	{"marzec", 3}, {"marca", 3}, {"kwiecień", 4}, {"kwietnia", 4},
	{"maja", 5}, {"czerwiec", 6}, {"czerwca", 6}, {"lipiec", 7},
	{"lipca", 7}, {"sierpień", 8}, {"sierpnia", 8}, {"wrzesień", 9},
	{"września", 9}, {"październik", 10}, {"października", 10},
	{"listopad", 11}, {"listopada", 11}, {"grudzień", 12}, {"grudnia", 12},

	// Czech
	{"leden", 1}, {"ledna", 1}, {"únor", 2}, {"února", 2},
	{"březen", 3}, {"března", 3}, {"duben", 4}, {"dubna", 4},
	{"květen", 5}, {"května", 5}, {"červen", 6}, {"června", 6},
	{"červenec", 7}, {"července", 7}, {"srpen", 8}, {"srpna", 8},
	{"září", 9}, {"říjen", 10}, {"října", 10}, {"prosinec", 12}, {"prosince", 12},

	// Turkish
	{"ocak", 1}, {"şubat", 2}, {"mart", 3}, {"nisan", 4}, {"mayıs", 5},
	{"haziran", 6}, {"temmuz", 7}, {"ağustos", 8}, {"eylül", 9},
	{"ekim", 10}, {"kasım", 11}, {"aralık", 12},

	// Indonesian
	{"januari", 1}, {"februari", 2}, {"maret", 3}, {"mei", 5},
	{"juni", 6}, {"juli", 7}, {"agustus", 8}, {"desember", 12},
}

var monthByName = buildMonthIndex()

func buildMonthIndex() map[string]int {
	index := make(map[string]int, len(monthLexicon))
	for _, e := range monthLexicon {
		// First entry wins on cross-language collisions.
		if _, ok := index[e.name]; !ok {
			index[e.name] = e.month
		}
	}
	return index
}

func lookupMonth(token string) (int, bool) {
	m, ok := monthByName[token]
	return m, ok
}
