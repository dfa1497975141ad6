package terminal

import (
	"fmt"
	"io"
	"strings"

	"neoquiz/internal/flow/controller"
	"neoquiz/internal/flow/models"
	"neoquiz/internal/flow/service"
)

var hints = map[models.ScreenID]string{
	models.ScreenSplash:           "(starting...)",
	models.ScreenOnboarding:       "start",
	models.ScreenLogin:            "login [email password role] | signup | forgot",
	models.ScreenRegister:         "email <address> | login | back",
	models.ScreenRegisterDetails:  "details | back",
	models.ScreenTeacherSelection: "pick <n|id> | retry | back",
	models.ScreenProfilePicture:   "avatar | upload | continue | back",
	models.ScreenAvatarSelection:  "choose <n> | back",
	models.ScreenWelcome:          "(signing you in...)",
	models.ScreenForgotPassword:   "send <email> | login | back",
	models.ScreenOTPVerification:  "code <4 digits> | back",
	models.ScreenResetPassword:    "reset <password> <confirm> | back",
	models.ScreenCategoryDetail:   "subcategories | back",
	models.ScreenSubCategory:      "exams <n> | back",
	models.ScreenExamList:         "exam | back",
	models.ScreenExamDetails:      "start [questions [title]] | back",
	models.ScreenExamQuestion:     "answer right|wrong | submit",
	models.ScreenExamResult:       "retake | solutions | back",
	models.ScreenExamSolution:     "back",
}

// Render writes st as a screen block.
func Render(w io.Writer, st controller.State) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\n== %s ==\n", st.Screen())
	body(&b, st)
	if st.Loading {
		b.WriteString("  ...working\n")
	}
	if st.Notice != "" {
		fmt.Fprintf(&b, "  ! %s\n", st.Notice)
	}
	fmt.Fprintf(&b, "  > %s\n", hint(st.Route))
	_, err := io.WriteString(w, b.String())
	return err
}

func body(b *strings.Builder, st controller.State) {
	switch p := st.Route.Params().(type) {
	case models.RegisterDetailsParams:
		fmt.Fprintf(b, "  Registering %s\n", p.Email)
	case models.TeacherSelectionParams:
		switch {
		case !st.TeachersLoaded && !st.Loading:
			b.WriteString("  Teachers could not be loaded.\n")
		case st.TeachersLoaded && len(st.Teachers) == 0:
			b.WriteString("  No teachers yet.\n")
		}
		for i, t := range st.Teachers {
			fmt.Fprintf(b, "  %d. %s", i+1, t.DisplayName())
			if t.Organization != "" {
				fmt.Fprintf(b, " (%s)", t.Organization)
			}
			b.WriteString("\n")
		}
	case models.AvatarSelectionParams:
		for i, a := range Avatars {
			fmt.Fprintf(b, "  %2d %s", i+1, a)
			if (i+1)%8 == 0 {
				b.WriteString("\n")
			}
		}
	case models.WelcomeParams:
		fmt.Fprintf(b, "  Welcome aboard, %s!\n", p.Role)
	case models.HomeParams:
		fmt.Fprintf(b, "  Signed in as %s\n", p.Role)
		if p.Role == models.RoleStudent {
			categories(b)
		}
	case models.CategoryListParams, models.ExploreParams:
		categories(b)
	case models.CategoryDetailParams:
		fmt.Fprintf(b, "  %s %s\n", p.CategoryIcon, p.CategoryName)
	case models.SubCategoryParams:
		fmt.Fprintf(b, "  %s %s\n", p.CategoryIcon, p.CategoryName)
		for i, s := range SubCategories {
			fmt.Fprintf(b, "  %d. %s %s\n", i+1, s.Icon, s.Name)
		}
	case models.ExamListParams:
		fmt.Fprintf(b, "  %s / %s %s\n", p.CategoryName, p.SubCategoryIcon, p.SubCategoryName)
	case models.ExamQuestionParams:
		fmt.Fprintf(b, "  %s\n  Question %d of %d (right %d, wrong %d)\n",
			p.ExamTitle, p.CurrentQuestion, p.TotalQuestions, p.CorrectAnswers, p.WrongAnswers)
	case models.ExamResultParams:
		verdict := "Better luck next time"
		if p.Passed() {
			verdict = "Passed"
		}
		fmt.Fprintf(b, "  %s\n  %d/%d right, %d points. %s\n",
			p.ExamTitle, p.CorrectAnswers, p.TotalQuestions, p.Points, verdict)
	}
}

func categories(b *strings.Builder) {
	for i, c := range Categories {
		fmt.Fprintf(b, "  %d. %s %s\n", i+1, c.Icon, c.Name)
	}
}

func hint(r models.Route) string {
	if h, ok := hints[r.Screen()]; ok {
		return h
	}
	role, ok := service.RoleOf(r)
	if !ok {
		return "back"
	}
	tabs := service.Tabs(role)
	names := make([]string, len(tabs))
	for i, t := range tabs {
		names[i] = t.String()
	}
	parts := []string{"tab " + strings.Join(names, "|")}
	switch r.Screen() {
	case models.ScreenHome, models.ScreenCategoryList, models.ScreenExplore:
		if role == models.RoleStudent {
			parts = append(parts, "category <n>")
		}
	case models.ScreenProfile, models.ScreenTeacherProfile:
		parts = append(parts, "logout")
	}
	if r.Screen() != models.ScreenHome {
		parts = append(parts, "back")
	}
	return strings.Join(parts, " | ")
}
