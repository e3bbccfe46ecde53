package models

// ClassOption is one class a student can apply for
type ClassOption struct {
	ID       string `json:"id" example:"hifz"`
	Name     string `json:"name" example:"Hifz ul Quran"`
	NameUrdu string `json:"nameUrdu" example:"حفظ القرآن"`
}

// ClassOptions is the fixed class catalogue
var ClassOptions = []ClassOption{
	{ID: "hifz", Name: "Hifz ul Quran", NameUrdu: "حفظ القرآن"},
	{ID: "nazra", Name: "Nazra Quran", NameUrdu: "ناظرہ قرآن"},
	{ID: "tajweed", Name: "Tajweed", NameUrdu: "تجوید"},
	{ID: "aalim", Name: "Dars-e-Nizami (Aalim)", NameUrdu: "درس نظامی (عالم)"},
	{ID: "fazil", Name: "Fazil Course", NameUrdu: "فاضل کورس"},
}

// Sections offered when a student is placed
var Sections = []string{"A", "B", "C", "D"}

// AcademicYears accepted on the admission form
var AcademicYears = []string{
	"2024-2025",
	"2025-2026",
	"2026-2027",
}

// FindClass looks up a class by its code
func FindClass(code string) (ClassOption, bool) {
	for _, c := range ClassOptions {
		if c.ID == code {
			return c, true
		}
	}
	return ClassOption{}, false
}

// IsValidClass reports whether code references the class catalogue
func IsValidClass(code string) bool {
	_, ok := FindClass(code)
	return ok
}

// ClassName returns the English class name, or the code itself when unknown
func ClassName(code string) string {
	if c, ok := FindClass(code); ok {
		return c.Name
	}
	return code
}
