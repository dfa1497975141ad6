package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"neoquiz/internal/flow/models"
	dErrors "neoquiz/pkg/domain-errors"
)

// Inline messages shown when a transition is refused.
const (
	NoticeCredentialsRequired = "Please enter your email and password"
	NoticeRoleRequired        = "Please choose student or teacher"
	NoticeLoginFailed         = "Invalid email or password"
	NoticePasswordMismatch    = "Password didn't match! Please check and try again."
	NoticeInvalidAge          = "Please enter a valid age"
	NoticeTeachersFailed      = "Failed to load teachers. Please try again."
	NoticeTeacherRequired     = "Please select a teacher to continue"
	NoticeUploadUnavailable   = "Photo upload functionality coming soon!"
	NoticeRegistrationFailed  = "Registration failed"
	NoticeInvalidCode         = "Please enter the 4-digit code"
	NoticeNewPasswordRequired = "Please enter a new password"
)

// PointsPerCorrectAnswer is the exam score for one right answer.
const PointsPerCorrectAnswer = 10

var otpPattern = regexp.MustCompile(`^[0-9]{4}$`)

var (
	studentTabs = []models.ScreenID{
		models.ScreenHome, models.ScreenPoints, models.ScreenCategoryList,
		models.ScreenExplore, models.ScreenLeaderboard, models.ScreenProfile,
	}
	teacherTabs = []models.ScreenID{
		models.ScreenHome, models.ScreenStudentAnalytics, models.ScreenStudentList,
		models.ScreenTeacherExamList, models.ScreenLeaderboard, models.ScreenTeacherProfile,
	}
)

// Transition decides what follows action on current. It is pure: effects are
// returned for the caller to run, never executed here.
//
// A refused action (bad input, missing selection) is not an error; it is a
// KindStay outcome with a Notice. An error means the action does not belong
// to the screen (CodeInvalidState) or the destination params broke their
// contract (CodeContractViolation).
func Transition(current models.Route, action models.Action) (Outcome, error) {
	if current.IsZero() {
		return Outcome{}, dErrors.New(dErrors.CodeInvalidState, "no current screen")
	}
	if action == nil {
		return Outcome{}, dErrors.New(dErrors.CodeInvalidInput, "action is required")
	}
	if _, ok := action.(models.Back); ok {
		return back(current), nil
	}

	switch p := current.Params().(type) {
	case models.SplashParams:
		if _, ok := action.(models.TimerElapsed); ok {
			return to(KindReplace, models.OnboardingParams{})
		}
	case models.OnboardingParams:
		if _, ok := action.(models.GetStarted); ok {
			return to(KindReplace, models.LoginParams{})
		}
	case models.LoginParams:
		return fromLogin(current, action)
	case models.RegisterParams:
		return fromRegister(current, action)
	case models.RegisterDetailsParams:
		if a, ok := action.(models.SubmitDetails); ok {
			return submitDetails(p, a)
		}
	case models.TeacherSelectionParams:
		return fromTeacherSelection(current, p, action)
	case models.ProfilePictureParams:
		return fromProfilePicture(current, p, action)
	case models.AvatarSelectionParams:
		return fromAvatarSelection(current, p, action)
	case models.WelcomeParams:
		if _, ok := action.(models.TimerElapsed); ok {
			return to(KindReset, models.HomeParams{Role: p.Role})
		}
	case models.ForgotPasswordParams:
		return fromForgotPassword(current, action)
	case models.OTPVerificationParams:
		if a, ok := action.(models.VerifyCode); ok {
			if !otpPattern.MatchString(strings.TrimSpace(a.Code)) {
				return stay(NoticeInvalidCode), nil
			}
			return to(KindPush, models.ResetPasswordParams{})
		}
	case models.ResetPasswordParams:
		if a, ok := action.(models.SubmitNewPassword); ok {
			switch {
			case a.Password == "":
				return stay(NoticeNewPasswordRequired), nil
			case a.Password != a.ConfirmPassword:
				return stay(NoticePasswordMismatch), nil
			}
			return to(KindReset, models.LoginParams{})
		}
	default:
		return fromSignedIn(current, action)
	}
	return Outcome{}, notAvailable(current, action)
}

func fromLogin(current models.Route, action models.Action) (Outcome, error) {
	switch a := action.(type) {
	case models.SubmitLogin:
		email := strings.TrimSpace(a.Email)
		if email == "" || a.Password == "" {
			return stay(NoticeCredentialsRequired), nil
		}
		if !a.Role.IsValid() {
			return stay(NoticeRoleRequired), nil
		}
		return Outcome{Kind: KindStay, Effect: LoginEffect{Email: email, Password: a.Password, Role: a.Role}}, nil
	case models.LoginSucceeded:
		return to(KindReset, models.HomeParams{Role: a.Role})
	case models.LoginFailed:
		return stay(orDefault(a.Message, NoticeLoginFailed)), nil
	case models.SignUp:
		return to(KindPush, models.RegisterParams{})
	case models.ForgotPassword:
		return to(KindPush, models.ForgotPasswordParams{})
	}
	return Outcome{}, notAvailable(current, action)
}

func fromRegister(current models.Route, action models.Action) (Outcome, error) {
	switch a := action.(type) {
	case models.SubmitEmail:
		draft, err := models.NewDraft(a.Email)
		if err != nil {
			return refuse(err)
		}
		return to(KindPush, models.RegisterDetailsParams{Email: draft.Email})
	case models.LoginNow:
		return to(KindPush, models.LoginParams{})
	}
	return Outcome{}, notAvailable(current, action)
}

func submitDetails(p models.RegisterDetailsParams, a models.SubmitDetails) (Outcome, error) {
	if a.Password != a.ConfirmPassword {
		return stay(NoticePasswordMismatch), nil
	}
	age, err := strconv.Atoi(strings.TrimSpace(a.Age))
	if err != nil {
		return stay(NoticeInvalidAge), nil
	}
	draft, err := models.NewDraft(p.Email)
	if err != nil {
		return Outcome{}, dErrors.Wrap(err, dErrors.CodeContractViolation, "RegisterDetails entered with an invalid email")
	}
	draft, err = draft.WithDetails(models.Details{
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Age:          age,
		Organization: a.Organization,
		Gender:       a.Gender,
		Role:         a.Role,
		Password:     a.Password,
	})
	if err != nil {
		return refuse(err)
	}

	next, err := ResolveNextAfterDetails(draft.Role)
	if err != nil {
		return Outcome{}, err
	}
	if next == models.ScreenTeacherSelection {
		out, err := to(KindPush, models.TeacherSelectionParams{Draft: draft})
		out.Effect = LoadTeachersEffect{}
		return out, err
	}
	return to(KindPush, models.ProfilePictureParams{Draft: draft})
}

func fromTeacherSelection(current models.Route, p models.TeacherSelectionParams, action models.Action) (Outcome, error) {
	switch a := action.(type) {
	case models.TeachersLoaded:
		return stay(""), nil
	case models.TeachersFailed:
		return stay(orDefault(a.Message, NoticeTeachersFailed)), nil
	case models.RetryTeachers:
		return Outcome{Kind: KindStay, Effect: LoadTeachersEffect{}}, nil
	case models.ContinueWithTeacher:
		draft, err := p.Draft.WithTeacher(a.TeacherID)
		if err != nil {
			return refuse(err)
		}
		return to(KindPush, models.ProfilePictureParams{Draft: draft})
	}
	return Outcome{}, notAvailable(current, action)
}

func fromProfilePicture(current models.Route, p models.ProfilePictureParams, action models.Action) (Outcome, error) {
	switch a := action.(type) {
	case models.ChooseFromAvatar:
		return to(KindPush, models.AvatarSelectionParams{Draft: p.Draft})
	case models.UploadPhoto:
		return stay(NoticeUploadUnavailable), nil
	case models.ContinueToWelcome:
		return Outcome{Kind: KindStay, Effect: RegisterEffect{Draft: p.Draft}}, nil
	case models.RegistrationCompleted:
		return to(KindPush, models.WelcomeParams{Role: p.Draft.Role})
	case models.RegistrationFailed:
		return stay(orDefault(a.Message, NoticeRegistrationFailed)), nil
	}
	return Outcome{}, notAvailable(current, action)
}

func fromAvatarSelection(current models.Route, p models.AvatarSelectionParams, action models.Action) (Outcome, error) {
	switch a := action.(type) {
	case models.LetsGo:
		draft, err := p.Draft.WithAvatar(a.Avatar)
		if err != nil {
			return refuse(err)
		}
		return Outcome{Kind: KindStay, Effect: RegisterEffect{Draft: draft}}, nil
	case models.RegistrationCompleted:
		// Only the role travels on; the draft ends here.
		return to(KindPush, models.WelcomeParams{Role: p.Draft.Role})
	case models.RegistrationFailed:
		return stay(orDefault(a.Message, NoticeRegistrationFailed)), nil
	}
	return Outcome{}, notAvailable(current, action)
}

func fromForgotPassword(current models.Route, action models.Action) (Outcome, error) {
	switch a := action.(type) {
	case models.SendCode:
		email := strings.TrimSpace(a.Email)
		if err := models.ValidateEmail(email); err != nil {
			return refuse(err)
		}
		return to(KindPush, models.OTPVerificationParams{Email: email})
	case models.LoginNow:
		return to(KindPush, models.LoginParams{})
	}
	return Outcome{}, notAvailable(current, action)
}

// fromSignedIn covers Home and everything reachable from it.
func fromSignedIn(current models.Route, action models.Action) (Outcome, error) {
	role, ok := RoleOf(current)
	if !ok {
		return Outcome{}, notAvailable(current, action)
	}

	switch a := action.(type) {
	case models.OpenTab:
		if current.Screen() == models.ScreenExamQuestion {
			break
		}
		return openTab(current, role, a.Tab)
	case models.OpenCategory:
		switch current.Screen() {
		case models.ScreenHome, models.ScreenCategoryList, models.ScreenExplore:
			if role == models.RoleStudent {
				return to(KindPush, models.CategoryDetailParams{
					CategoryID:    a.CategoryID,
					CategoryName:  a.CategoryName,
					CategoryIcon:  a.CategoryIcon,
					CategoryColor: a.CategoryColor,
				})
			}
		}
	case models.ViewSubCategories:
		if p, ok := models.ParamsAs[models.CategoryDetailParams](current); ok {
			return to(KindPush, models.SubCategoryParams{
				CategoryName:  p.CategoryName,
				CategoryIcon:  p.CategoryIcon,
				CategoryColor: p.CategoryColor,
			})
		}
	case models.OpenExamList:
		if p, ok := models.ParamsAs[models.SubCategoryParams](current); ok {
			return to(KindPush, models.ExamListParams{
				CategoryName:     p.CategoryName,
				SubCategoryName:  a.SubCategoryName,
				SubCategoryIcon:  a.SubCategoryIcon,
				SubCategoryColor: a.SubCategoryColor,
			})
		}
	case models.OpenExam:
		if current.Screen() == models.ScreenExamList {
			return to(KindPush, models.ExamDetailsParams{})
		}
	case models.StartExam:
		if current.Screen() == models.ScreenExamDetails {
			return to(KindPush, models.ExamQuestionParams{
				ExamTitle:       a.ExamTitle,
				TotalQuestions:  a.TotalQuestions,
				CurrentQuestion: 1,
			})
		}
	case models.AnswerQuestion:
		if p, ok := models.ParamsAs[models.ExamQuestionParams](current); ok {
			return answer(p, a.Correct)
		}
	case models.SubmitExam:
		if p, ok := models.ParamsAs[models.ExamQuestionParams](current); ok {
			return finish(p, p.TotalQuestions-p.CorrectAnswers)
		}
	case models.RetakeExam:
		if current.Screen() == models.ScreenExamResult {
			return to(KindPush, models.ExamDetailsParams{})
		}
	case models.SeeAnswers:
		if current.Screen() == models.ScreenExamResult {
			return to(KindPush, models.ExamSolutionParams{})
		}
	case models.Logout:
		if isProfile(current.Screen()) {
			return Outcome{Kind: KindStay, Effect: LogoutEffect{}}, nil
		}
	case models.LogoutCompleted:
		if isProfile(current.Screen()) {
			return to(KindReset, models.LoginParams{})
		}
	}
	return Outcome{}, notAvailable(current, action)
}

func openTab(current models.Route, role models.Role, tab models.ScreenID) (Outcome, error) {
	tabs := studentTabs
	if role == models.RoleTeacher {
		tabs = teacherTabs
	}
	if !contains(tabs, tab) {
		return Outcome{}, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s is not a %s tab", tab, role))
	}
	if tab == current.Screen() {
		return stay(""), nil
	}

	var p models.Params
	switch tab {
	case models.ScreenHome:
		return to(KindReset, models.HomeParams{Role: role})
	case models.ScreenLeaderboard:
		p = models.LeaderboardParams{Role: role}
	case models.ScreenPoints:
		p = models.PointsParams{}
	case models.ScreenCategoryList:
		p = models.CategoryListParams{}
	case models.ScreenExplore:
		p = models.ExploreParams{}
	case models.ScreenProfile:
		p = models.ProfileParams{}
	case models.ScreenStudentAnalytics:
		p = models.StudentAnalyticsParams{}
	case models.ScreenStudentList:
		p = models.StudentListParams{}
	case models.ScreenTeacherExamList:
		p = models.TeacherExamListParams{}
	case models.ScreenTeacherProfile:
		p = models.TeacherProfileParams{}
	}
	return to(KindPush, p)
}

func answer(p models.ExamQuestionParams, correct bool) (Outcome, error) {
	if correct {
		p.CorrectAnswers++
	} else {
		p.WrongAnswers++
	}
	if p.CurrentQuestion < p.TotalQuestions {
		p.CurrentQuestion++
		return to(KindReplace, p)
	}
	return finish(p, p.WrongAnswers)
}

// finish replaces the running question with the result.
func finish(p models.ExamQuestionParams, wrong int) (Outcome, error) {
	return to(KindReplace, models.ExamResultParams{
		ExamTitle:      p.ExamTitle,
		TotalQuestions: p.TotalQuestions,
		CorrectAnswers: p.CorrectAnswers,
		WrongAnswers:   wrong,
		Points:         p.CorrectAnswers * PointsPerCorrectAnswer,
	})
}

// Tabs lists the tabs open to role.
func Tabs(role models.Role) []models.ScreenID {
	if role == models.RoleTeacher {
		return append([]models.ScreenID(nil), teacherTabs...)
	}
	return append([]models.ScreenID(nil), studentTabs...)
}

// RoleOf returns the role a signed-in screen belongs to.
func RoleOf(r models.Route) (models.Role, bool) {
	switch p := r.Params().(type) {
	case models.HomeParams:
		return p.Role, true
	case models.LeaderboardParams:
		return p.Role, true
	}
	switch r.Screen() {
	case models.ScreenExplore, models.ScreenProfile, models.ScreenPoints, models.ScreenCategoryList,
		models.ScreenCategoryDetail, models.ScreenSubCategory, models.ScreenExamList,
		models.ScreenExamDetails, models.ScreenExamQuestion, models.ScreenExamResult,
		models.ScreenExamSolution:
		return models.RoleStudent, true
	case models.ScreenTeacherProfile, models.ScreenStudentList, models.ScreenStudentAnalytics,
		models.ScreenTeacherExamList:
		return models.RoleTeacher, true
	}
	return "", false
}

func back(current models.Route) Outcome {
	switch current.Screen() {
	case models.ScreenSplash, models.ScreenWelcome, models.ScreenHome, models.ScreenExamQuestion:
		return stay("")
	}
	return Outcome{Kind: KindBack}
}

func isProfile(s models.ScreenID) bool {
	return s == models.ScreenProfile || s == models.ScreenTeacherProfile
}

func to(kind Kind, p models.Params) (Outcome, error) {
	r, err := models.NewRoute(p)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Kind: kind, Route: r}, nil
}

func stay(notice string) Outcome {
	return Outcome{Kind: KindStay, Notice: notice}
}

// refuse turns a validation failure into an inline notice. Anything else is
// a real error.
func refuse(err error) (Outcome, error) {
	if dErrors.HasCode(err, dErrors.CodeValidation) {
		return stay(dErrors.UserMessage(err, "")), nil
	}
	return Outcome{}, err
}

func notAvailable(current models.Route, action models.Action) error {
	return dErrors.New(dErrors.CodeInvalidState,
		fmt.Sprintf("action %s is not available on %s", action.Name(), current.Screen()))
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func contains(list []models.ScreenID, s models.ScreenID) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
