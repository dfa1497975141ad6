package terminal

import (
	"errors"
	"strconv"
	"strings"

	"neoquiz/internal/flow/controller"
	"neoquiz/internal/flow/models"
	dErrors "neoquiz/pkg/domain-errors"
)

// ErrQuit is returned by Parse for quit and exit.
var ErrQuit = errors.New("quit")

// errHelp asks the caller to print the command list.
var errHelp = errors.New("help")

// Prompter reads one answer for label. Parse uses it for forms whose fields
// were not given on the command line.
type Prompter func(label string) (string, error)

// Parse turns one input line into an action for the current screen. An empty
// line yields a nil action and no error.
func Parse(st controller.State, line string, ask Prompter) (models.Action, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit":
		return nil, ErrQuit
	case "help", "?":
		return nil, errHelp
	case "back":
		return models.Back{}, nil
	}

	screen := st.Screen()
	switch screen {
	case models.ScreenOnboarding:
		if cmd == "start" {
			return models.GetStarted{}, nil
		}
	case models.ScreenLogin:
		switch cmd {
		case "login":
			return parseLogin(args, ask)
		case "signup":
			return models.SignUp{}, nil
		case "forgot":
			return models.ForgotPassword{}, nil
		}
	case models.ScreenRegister:
		switch cmd {
		case "email":
			return models.SubmitEmail{Email: strings.Join(args, " ")}, nil
		case "login":
			return models.LoginNow{}, nil
		}
	case models.ScreenRegisterDetails:
		if cmd == "details" {
			return parseDetails(ask)
		}
	case models.ScreenTeacherSelection:
		switch cmd {
		case "pick":
			return parsePick(st.Teachers, args)
		case "retry":
			return models.RetryTeachers{}, nil
		}
	case models.ScreenProfilePicture:
		switch cmd {
		case "avatar":
			return models.ChooseFromAvatar{}, nil
		case "upload":
			return models.UploadPhoto{}, nil
		case "continue":
			return models.ContinueToWelcome{}, nil
		}
	case models.ScreenAvatarSelection:
		if cmd == "choose" {
			if len(args) == 0 {
				return models.LetsGo{}, nil
			}
			i, err := index(args[0], len(Avatars))
			if err != nil {
				return nil, err
			}
			return models.LetsGo{Avatar: Avatars[i]}, nil
		}
	case models.ScreenForgotPassword:
		switch cmd {
		case "send":
			return models.SendCode{Email: strings.Join(args, " ")}, nil
		case "login":
			return models.LoginNow{}, nil
		}
	case models.ScreenOTPVerification:
		if cmd == "code" {
			return models.VerifyCode{Code: strings.Join(args, "")}, nil
		}
	case models.ScreenResetPassword:
		if cmd == "reset" {
			return models.SubmitNewPassword{Password: arg(args, 0), ConfirmPassword: arg(args, 1)}, nil
		}
	default:
		if a, ok, err := parseSignedIn(screen, cmd, args); ok {
			return a, err
		}
	}
	return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown command "+strconv.Quote(cmd)+"; type help")
}

func parseSignedIn(screen models.ScreenID, cmd string, args []string) (models.Action, bool, error) {
	switch cmd {
	case "tab":
		if len(args) == 0 {
			return nil, true, dErrors.New(dErrors.CodeInvalidInput, "tab needs a screen name")
		}
		tab, err := parseTab(args[0])
		return models.OpenTab{Tab: tab}, true, err
	case "category":
		i, err := index(arg(args, 0), len(Categories))
		if err != nil {
			return nil, true, err
		}
		return Categories[i].action(), true, nil
	case "subcategories":
		return models.ViewSubCategories{}, true, nil
	case "exams":
		i, err := index(arg(args, 0), len(SubCategories))
		if err != nil {
			return nil, true, err
		}
		return SubCategories[i].action(), true, nil
	case "exam":
		return models.OpenExam{}, true, nil
	case "start":
		if screen != models.ScreenExamDetails {
			return nil, false, nil
		}
		a, err := parseStart(args)
		return a, true, err
	case "answer":
		a, err := parseAnswer(arg(args, 0))
		return a, true, err
	case "submit":
		return models.SubmitExam{}, true, nil
	case "retake":
		return models.RetakeExam{}, true, nil
	case "solutions":
		return models.SeeAnswers{}, true, nil
	case "logout":
		return models.Logout{}, true, nil
	}
	return nil, false, nil
}

func parseLogin(args []string, ask Prompter) (models.Action, error) {
	labels := []string{"Email", "Password", "Role (student/teacher)"}
	values := make([]string, len(labels))
	for i, label := range labels {
		if i < len(args) {
			values[i] = args[i]
			continue
		}
		v, err := ask(label)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	a := models.SubmitLogin{Email: values[0], Password: values[1]}
	// an unknown role is passed through empty so the screen reports it
	if r, err := models.ParseRole(values[2]); err == nil {
		a.Role = r
	}
	return a, nil
}

func parseDetails(ask Prompter) (models.Action, error) {
	var a models.SubmitDetails
	var gender, role string
	form := []struct {
		label string
		dst   *string
	}{
		{"First name", &a.FirstName},
		{"Last name", &a.LastName},
		{"Age", &a.Age},
		{"Organization", &a.Organization},
		{"Gender (male/female, optional)", &gender},
		{"Role (student/teacher)", &role},
		{"Password", &a.Password},
		{"Confirm password", &a.ConfirmPassword},
	}
	for _, f := range form {
		v, err := ask(f.label)
		if err != nil {
			return nil, err
		}
		*f.dst = strings.TrimSpace(v)
	}

	g, err := models.ParseGender(gender)
	if err != nil {
		return nil, err
	}
	a.Gender = g
	if r, err := models.ParseRole(role); err == nil {
		a.Role = r
	}
	return a, nil
}

// parsePick accepts a 1-based position in the loaded list or a teacher id.
// Without an argument it continues with nothing selected.
func parsePick(teachers []models.Teacher, args []string) (models.Action, error) {
	if len(args) == 0 {
		return models.ContinueWithTeacher{}, nil
	}
	for _, t := range teachers {
		if t.ID == args[0] {
			return models.ContinueWithTeacher{TeacherID: t.ID}, nil
		}
	}
	i, err := index(args[0], len(teachers))
	if err != nil {
		return nil, err
	}
	return models.ContinueWithTeacher{TeacherID: teachers[i].ID}, nil
}

func parseStart(args []string) (models.Action, error) {
	a := models.StartExam{ExamTitle: DefaultExamTitle, TotalQuestions: DefaultQuestions}
	if len(args) == 0 {
		return a, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "question count must be a positive number")
	}
	a.TotalQuestions = n
	if len(args) > 1 {
		a.ExamTitle = strings.Join(args[1:], " ")
	}
	return a, nil
}

func parseAnswer(v string) (models.Action, error) {
	switch strings.ToLower(v) {
	case "right", "yes", "y":
		return models.AnswerQuestion{Correct: true}, nil
	case "wrong", "no", "n":
		return models.AnswerQuestion{Correct: false}, nil
	}
	return nil, dErrors.New(dErrors.CodeInvalidInput, "answer must be right or wrong")
}

// parseTab matches a screen name case-insensitively.
func parseTab(name string) (models.ScreenID, error) {
	for _, s := range models.AllScreens() {
		if strings.EqualFold(s.String(), name) {
			return s, nil
		}
	}
	return models.ParseScreenID(name)
}

// index converts a 1-based position into a slice index.
func index(v string, n int) (int, error) {
	if n == 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "nothing to pick from yet")
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 1 || i > n {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "pick a number between 1 and "+strconv.Itoa(n))
	}
	return i - 1, nil
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
