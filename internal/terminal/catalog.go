package terminal

import "neoquiz/internal/flow/models"

// Category is a quiz category offered on Home, CategoryList and Explore.
type Category struct {
	ID    string
	Name  string
	Icon  string
	Color string
}

// Categories is the fixed catalogue shown to students.
var Categories = []Category{
	{ID: "1", Name: "Math", Icon: "📐", Color: "#93C5FD"},
	{ID: "2", Name: "Science", Icon: "🧪", Color: "#FCD34D"},
	{ID: "3", Name: "Maths", Icon: "📊", Color: "#60A5FA"},
	{ID: "4", Name: "GK", Icon: "💡", Color: "#93C5FD"},
	{ID: "5", Name: "Law", Icon: "⚖️", Color: "#93C5FD"},
	{ID: "6", Name: "Arts And Culture", Icon: "🎨", Color: "#FCD34D"},
}

// SubCategory is an entry of the SubCategory screen.
type SubCategory struct {
	Name  string
	Icon  string
	Color string
}

var SubCategories = []SubCategory{
	{Name: "Earth Science", Icon: "🌍", Color: "#93C5FD"},
	{Name: "Physics", Icon: "⚡", Color: "#93C5FD"},
	{Name: "Chemistry", Icon: "🧪", Color: "#FCA5A5"},
}

// Avatars are the choices on AvatarSelection, in display order.
var Avatars = []string{
	"👨", "🧔", "👩", "🧑", "👴", "👵", "👨‍🎓", "👩‍🎓",
	"👨‍🏫", "👩‍🏫", "👨‍🎨", "👩‍🎨", "👨‍🚀", "👩‍🚀", "👳", "🧕",
}

const (
	DefaultExamTitle = "Physics Every Saturday Night Quiz"
	DefaultQuestions = 20
)

func (c Category) action() models.OpenCategory {
	return models.OpenCategory{
		CategoryID:    c.ID,
		CategoryName:  c.Name,
		CategoryIcon:  c.Icon,
		CategoryColor: c.Color,
	}
}

func (s SubCategory) action() models.OpenExamList {
	return models.OpenExamList{
		SubCategoryName:  s.Name,
		SubCategoryIcon:  s.Icon,
		SubCategoryColor: s.Color,
	}
}
