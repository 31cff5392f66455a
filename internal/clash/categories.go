package clash

import (
	"regexp"
	"strings"
)

// MapPath maps a model path, selection locator or file name to a category id.
// It returns "" when nothing in the path identifies a category.
func MapPath(path string) string {
	p := strings.ToUpper(path)
	has := func(subs ...string) bool {
		for _, s := range subs {
			if strings.Contains(p, s) {
				return true
			}
		}
		return false
	}

	switch {
	case has("АИ", "INTERIORS", "ОТДЕЛКА"):
		return "AI"
	case has("СС", "АПС", "ПОЖАРН", "LOW CURRENT"):
		return "SS"
	case has("ИТП", "ITP", "HEAT POINT", "ТЕПЛОВОЙ ПУНКТ"):
		return "OV_ITP"
	case has("ФАСАД", "FACADE"):
		return "AR_FACADE"
	case has("КРОВЛЯ", "ROOF"):
		return "AR_ROOF"
	case has("КЛАДКА", "BRICK", "BLOCK"):
		return "AR_WALLS"
	case has("SML", "ЧУГУН", "КАНАЛИЗАЦИЯ"):
		return "VK_K"
	}

	if has("КР", "KR", "KJR") {
		switch {
		case has("СТЕН", "WALL"):
			return "KR_WALLS"
		case has("КОЛОН", "COLUMN", "ПИЛОН", "PYLON"):
			return "KR_COLS"
		case has("ПЕРЕКР", "SLAB", "ПЛИТ", "FLOOR"):
			return "KR_SLABS"
		case has("БАЛК", "BEAM", "РИГЕЛ"):
			return "KR_BEAMS"
		}
	}

	if has("АР", "AR") {
		switch {
		case has("СТЕН", "WALL", "ПЕРЕГОРОД"):
			return "AR_WALLS"
		case has("ДВЕР", "DOOR", "ОКН", "WINDOW"):
			return "AR_DOORS"
		}
	}

	switch {
	case has("ВИС/АПТ"):
		return "AUPT_PIPE"
	case has("ВИС/ВК"):
		return "VK_V"
	case has("ВИС/ОВ"):
		return "OV_VENT"
	case has("ВИС/ЭОМ"):
		return "EOM"
	}
	return ""
}

type codeFamily struct {
	code string
	ids  []string
}

// codeFamilies lists discipline codes as they appear in report file names.
// Order matters: the first code contained in a name wins.
var codeFamilies = []codeFamily{
	{"АР", []string{"AR_WALLS", "AR_DOORS", "AR_FACADE", "AR_ROOF"}},
	{"AR", []string{"AR_WALLS", "AR_DOORS", "AR_FACADE", "AR_ROOF"}},
	{"КР", []string{"KR_WALLS", "KR_COLS", "KR_SLABS", "KR_BEAMS"}},
	{"KR", []string{"KR_WALLS", "KR_COLS", "KR_SLABS", "KR_BEAMS"}},
	{"ВК", []string{"VK_K", "VK_V"}},
	{"VK", []string{"VK_K", "VK_V"}},
	{"ОВ", []string{"OV_VENT", "OV_HEAT", "OV_ITP"}},
	{"OV", []string{"OV_VENT", "OV_HEAT", "OV_ITP"}},
	{"ИТП", []string{"OV_ITP"}},
	{"ITP", []string{"OV_ITP"}},
	{"АУПТ", []string{"AUPT_PIPE", "AUPT_SPR"}},
	{"AUPT", []string{"AUPT_PIPE", "AUPT_SPR"}},
	{"ЭОМ", []string{"EOM"}},
	{"EOM", []string{"EOM"}},
	{"ЭО", []string{"EOM"}},
	{"ЭС", []string{"EOM"}},
	{"ЭМ", []string{"EOM"}},
	{"СС", []string{"SS"}},
	{"SS", []string{"SS"}},
	{"АИ", []string{"AI"}},
	{"AI", []string{"AI"}},
}

type refinementRule struct {
	id       string
	keywords []string
}

var refinementRules = []refinementRule{
	{"AR_FACADE", []string{"фасад", "facade"}},
	{"AR_ROOF", []string{"кровл", "roof"}},
	{"AR_WALLS", []string{"стен", "верт", "кладк", "block", "brick"}},
	{"AR_DOORS", []string{"двер", "окон"}},
	{"KR_SLABS", []string{"перекрыт", "плит", "горизонт"}},
	{"KR_WALLS", []string{"стен"}},
	{"KR_COLS", []string{"колон", "пилон"}},
	{"KR_BEAMS", []string{"балк", "ригел"}},
	{"OV_ITP", []string{"итп", "itp", "heat point"}},
	{"OV_VENT", []string{"вент", "воздух"}},
	{"OV_HEAT", []string{"отоп", "тепл"}},
	{"VK_K", []string{"канал", "сток", "sml"}},
	{"VK_V", []string{"вод"}},
	{"AUPT_PIPE", []string{"труб"}},
	{"AUPT_SPR", []string{"спринкл"}},
}

// refine picks the member of a code family that text describes, falling back
// to the first member.
func refine(ids []string, text string) string {
	if len(ids) == 1 {
		return ids[0]
	}
	lower := strings.ToLower(text)
	for _, rule := range refinementRules {
		if !contains(ids, rule.id) {
			continue
		}
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.id
			}
		}
	}
	return ids[0]
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

var (
	sideSeparator  = regexp.MustCompile(`\s+[-_]\s+`)
	tokenSeparator = regexp.MustCompile(`[-_+]`)
)

// detectFromName reads the colliding categories from a report file name such
// as "11.10_АР (Кладка) - КР (Верт).xml".
func detectFromName(filename string) (row, col string) {
	var found []string

	if sides := sideSeparator.Split(filename, -1); len(sides) >= 2 {
		for _, side := range sides[:2] {
			upper := strings.ToUpper(side)
			for _, f := range codeFamilies {
				if strings.Contains(upper, f.code) {
					found = append(found, refine(f.ids, side))
					break
				}
			}
		}
	} else {
		for _, part := range tokenSeparator.Split(filename, -1) {
			part = strings.ToUpper(strings.TrimSpace(part))
			head, _, _ := strings.Cut(part, "(")
			head = strings.TrimSpace(head)
			for _, f := range codeFamilies {
				if strings.Contains(head, f.code) {
					found = append(found, refine(f.ids, part))
					break
				}
			}
		}
	}

	if len(found) >= 1 {
		row = found[0]
	}
	if len(found) >= 2 {
		col = found[1]
	}
	return row, col
}
