package model

// Language selects the output language requested from the backend.
type Language string

const (
	// LanguageEnglish requests English output and USD as the default currency.
	LanguageEnglish Language = "en"
	// LanguageRussian requests Russian output and RUB as the default currency.
	LanguageRussian Language = "ru"
)

// ParseLanguage maps a configuration value to a Language, defaulting to English.
func ParseLanguage(s string) Language {
	if Language(s) == LanguageRussian {
		return LanguageRussian
	}
	return LanguageEnglish
}

// CurrencySymbol returns the default currency symbol for the language.
func (l Language) CurrencySymbol() string {
	if l == LanguageRussian {
		return "₽"
	}
	return "$"
}

// Discipline is a construction trade classification used to scope work items.
type Discipline struct {
	ID          string `mapstructure:"id"`
	Code        string `mapstructure:"code"`
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Keywords    string `mapstructure:"keywords"`
	Rank        int    `mapstructure:"rank"` // 1 (hardest to move) to 6 (easiest)
}

// CategoryDescriptor is the subset of a discipline that prompts see.
type CategoryDescriptor struct {
	Code        string
	Name        string
	Description string
	Keywords    string
}

// Descriptor returns the prompt-facing descriptor of the discipline.
func (d Discipline) Descriptor() CategoryDescriptor {
	return CategoryDescriptor{
		Code:        d.Code,
		Name:        d.Name,
		Description: d.Description,
		Keywords:    d.Keywords,
	}
}

// DefaultDisciplines returns the built-in reference list of disciplines.
func DefaultDisciplines() []Discipline {
	return []Discipline{
		{ID: "AR_WALLS", Code: "AR", Rank: 2, Name: "Walls", Description: "Architectural walls, partitions", Keywords: "brick, block, drywall, plaster, paint, dismantling, partition"},
		{ID: "AR_DOORS", Code: "AR", Rank: 2, Name: "Doors / Windows", Description: "Door and window openings", Keywords: "door, window, jam, installation, dismantling, opening"},
		{ID: "KR_WALLS", Code: "KR", Rank: 1, Name: "Walls", Description: "Load-bearing walls (Monolith)", Keywords: "concrete, monolith, reinforcement, drilling, diamond cutting, opening, hole"},
		{ID: "KR_COLS", Code: "KR", Rank: 1, Name: "Columns / Pylons", Description: "Load-bearing columns", Keywords: "concrete, monolith, column, pylon, drilling, diamond cutting, reinforcement, hole"},
		{ID: "KR_SLABS", Code: "KR", Rank: 1, Name: "Slabs / Ramps", Description: "Floor slabs", Keywords: "concrete, slab, floor, ceiling, drilling, cutting, opening"},
		{ID: "KR_BEAMS", Code: "KR", Rank: 1, Name: "Beams", Description: "Load-bearing beams", Keywords: "concrete, beam, drilling, cutting, reinforcement"},
		{ID: "VK_K", Code: "VK (K)", Rank: 3, Name: "Pipes / Drainage", Description: "Sewage and storm drainage", Keywords: "pipe, drainage, sewage, plastic, installation, dismantling"},
		{ID: "VK_V", Code: "VK (V)", Rank: 5, Name: "Pipes", Description: "Water supply (Pressure)", Keywords: "pipe, water supply, steel, polypropylene, installation, valve"},
		{ID: "OV_VENT", Code: "OV (Vent.)", Rank: 4, Name: "Ducts", Description: "Ventilation ducts", Keywords: "duct, ventilation, tin, installation, dismantling, diffusers"},
		{ID: "OV_HEAT", Code: "OV (Heat.)", Rank: 5, Name: "Pipes", Description: "Heating pipes", Keywords: "radiator, pipe, heating, welding, installation"},
		{ID: "AUPT_PIPE", Code: "AUPT", Rank: 5, Name: "Pipes", Description: "Fire extinguishing pipes", Keywords: "pipe, fire, steel, welding, painting"},
		{ID: "AUPT_SPR", Code: "AUPT", Rank: 5, Name: "Sprinklers", Description: "Sprinkler heads", Keywords: "sprinkler, head, fire"},
		{ID: "EOM", Code: "EOM, SS", Rank: 6, Name: "Trays / Cables", Description: "Cable trays, low voltage", Keywords: "tray, cable, wire, socket, switch, installation"},
	}
}

// FindDiscipline returns the discipline with the given id.
func FindDiscipline(disciplines []Discipline, id string) (Discipline, bool) {
	for _, d := range disciplines {
		if d.ID == id {
			return d, true
		}
	}
	return Discipline{}, false
}
