package models

import (
	"strings"

	dErrors "neoquiz/pkg/domain-errors"
)

// Params is the closed set of parameter bundles, one variant per screen. The
// unexported marker keeps other packages from adding variants, and each
// variant names its own screen so a route can never pair a screen with the
// wrong bundle.
type Params interface {
	Screen() ScreenID
	Validate() error
	isParams()
}

type (
	SplashParams           struct{}
	OnboardingParams       struct{}
	LoginParams            struct{}
	RegisterParams         struct{}
	ForgotPasswordParams   struct{}
	ResetPasswordParams    struct{}
	ExploreParams          struct{}
	ProfileParams          struct{}
	PointsParams           struct{}
	CategoryListParams     struct{}
	ExamDetailsParams      struct{}
	ExamSolutionParams     struct{}
	TeacherProfileParams   struct{}
	StudentListParams      struct{}
	StudentAnalyticsParams struct{}
	TeacherExamListParams  struct{}
)

type RegisterDetailsParams struct {
	Email string
}

type TeacherSelectionParams struct {
	Draft RegistrationDraft
}

type ProfilePictureParams struct {
	Draft RegistrationDraft
}

type AvatarSelectionParams struct {
	Draft RegistrationDraft
}

// WelcomeParams is deliberately narrow: the draft does not survive past
// registration, only the role does.
type WelcomeParams struct {
	Role Role
}

type HomeParams struct {
	Role Role
}

type OTPVerificationParams struct {
	Email string
}

type LeaderboardParams struct {
	Role Role
}

type CategoryDetailParams struct {
	CategoryID    string
	CategoryName  string
	CategoryIcon  string
	CategoryColor string
}

type SubCategoryParams struct {
	CategoryName  string
	CategoryIcon  string
	CategoryColor string
}

type ExamListParams struct {
	CategoryName     string
	SubCategoryName  string
	SubCategoryIcon  string
	SubCategoryColor string
}

type ExamQuestionParams struct {
	ExamTitle       string
	TotalQuestions  int
	CurrentQuestion int
	CorrectAnswers  int
	WrongAnswers    int
}

type ExamResultParams struct {
	ExamTitle      string
	TotalQuestions int
	CorrectAnswers int
	WrongAnswers   int
	Points         int
}

// Passed reports whether at least half of the questions were right.
func (p ExamResultParams) Passed() bool {
	return p.CorrectAnswers*2 >= p.TotalQuestions
}

func (SplashParams) Screen() ScreenID           { return ScreenSplash }
func (OnboardingParams) Screen() ScreenID       { return ScreenOnboarding }
func (LoginParams) Screen() ScreenID            { return ScreenLogin }
func (RegisterParams) Screen() ScreenID         { return ScreenRegister }
func (RegisterDetailsParams) Screen() ScreenID  { return ScreenRegisterDetails }
func (TeacherSelectionParams) Screen() ScreenID { return ScreenTeacherSelection }
func (ProfilePictureParams) Screen() ScreenID   { return ScreenProfilePicture }
func (AvatarSelectionParams) Screen() ScreenID  { return ScreenAvatarSelection }
func (WelcomeParams) Screen() ScreenID          { return ScreenWelcome }
func (HomeParams) Screen() ScreenID             { return ScreenHome }
func (ForgotPasswordParams) Screen() ScreenID   { return ScreenForgotPassword }
func (OTPVerificationParams) Screen() ScreenID  { return ScreenOTPVerification }
func (ResetPasswordParams) Screen() ScreenID    { return ScreenResetPassword }
func (LeaderboardParams) Screen() ScreenID      { return ScreenLeaderboard }
func (ExploreParams) Screen() ScreenID          { return ScreenExplore }
func (ProfileParams) Screen() ScreenID          { return ScreenProfile }
func (PointsParams) Screen() ScreenID           { return ScreenPoints }
func (CategoryListParams) Screen() ScreenID     { return ScreenCategoryList }
func (CategoryDetailParams) Screen() ScreenID   { return ScreenCategoryDetail }
func (SubCategoryParams) Screen() ScreenID      { return ScreenSubCategory }
func (ExamListParams) Screen() ScreenID         { return ScreenExamList }
func (ExamDetailsParams) Screen() ScreenID      { return ScreenExamDetails }
func (ExamQuestionParams) Screen() ScreenID     { return ScreenExamQuestion }
func (ExamResultParams) Screen() ScreenID       { return ScreenExamResult }
func (ExamSolutionParams) Screen() ScreenID     { return ScreenExamSolution }
func (TeacherProfileParams) Screen() ScreenID   { return ScreenTeacherProfile }
func (StudentListParams) Screen() ScreenID      { return ScreenStudentList }
func (StudentAnalyticsParams) Screen() ScreenID { return ScreenStudentAnalytics }
func (TeacherExamListParams) Screen() ScreenID  { return ScreenTeacherExamList }

func (SplashParams) Validate() error           { return nil }
func (OnboardingParams) Validate() error       { return nil }
func (LoginParams) Validate() error            { return nil }
func (RegisterParams) Validate() error         { return nil }
func (ForgotPasswordParams) Validate() error   { return nil }
func (ResetPasswordParams) Validate() error    { return nil }
func (ExploreParams) Validate() error          { return nil }
func (ProfileParams) Validate() error          { return nil }
func (PointsParams) Validate() error           { return nil }
func (CategoryListParams) Validate() error     { return nil }
func (ExamDetailsParams) Validate() error      { return nil }
func (ExamSolutionParams) Validate() error     { return nil }
func (TeacherProfileParams) Validate() error   { return nil }
func (StudentListParams) Validate() error      { return nil }
func (StudentAnalyticsParams) Validate() error { return nil }
func (TeacherExamListParams) Validate() error  { return nil }

func (p RegisterDetailsParams) Validate() error { return requireField(p.Email, "email") }
func (p OTPVerificationParams) Validate() error { return requireField(p.Email, "email") }

func (p TeacherSelectionParams) Validate() error { return p.Draft.ReadyForTeacherSelection() }
func (p ProfilePictureParams) Validate() error   { return p.Draft.ReadyForProfilePicture() }
func (p AvatarSelectionParams) Validate() error  { return p.Draft.ReadyForProfilePicture() }

func (p WelcomeParams) Validate() error     { return requireRole(p.Role) }
func (p HomeParams) Validate() error        { return requireRole(p.Role) }
func (p LeaderboardParams) Validate() error { return requireRole(p.Role) }

func (p CategoryDetailParams) Validate() error {
	if err := requireField(p.CategoryID, "categoryId"); err != nil {
		return err
	}
	return requireField(p.CategoryName, "categoryName")
}

func (p SubCategoryParams) Validate() error {
	return requireField(p.CategoryName, "categoryName")
}

func (p ExamListParams) Validate() error {
	if err := requireField(p.CategoryName, "categoryName"); err != nil {
		return err
	}
	return requireField(p.SubCategoryName, "subCategoryName")
}

func (p ExamQuestionParams) Validate() error {
	if err := requireField(p.ExamTitle, "examTitle"); err != nil {
		return err
	}
	if p.TotalQuestions < 1 || p.CurrentQuestion < 1 || p.CurrentQuestion > p.TotalQuestions {
		return dErrors.New(dErrors.CodeContractViolation, "currentQuestion must be within 1..totalQuestions")
	}
	if p.CorrectAnswers < 0 || p.WrongAnswers < 0 || p.CorrectAnswers+p.WrongAnswers != p.CurrentQuestion-1 {
		return dErrors.New(dErrors.CodeContractViolation, "answer counts must cover the questions already answered")
	}
	return nil
}

func (p ExamResultParams) Validate() error {
	if err := requireField(p.ExamTitle, "examTitle"); err != nil {
		return err
	}
	if p.TotalQuestions < 1 || p.CorrectAnswers < 0 || p.WrongAnswers < 0 ||
		p.CorrectAnswers+p.WrongAnswers != p.TotalQuestions {
		return dErrors.New(dErrors.CodeContractViolation, "answer counts must add up to totalQuestions")
	}
	return nil
}

func (SplashParams) isParams()           {}
func (OnboardingParams) isParams()       {}
func (LoginParams) isParams()            {}
func (RegisterParams) isParams()         {}
func (RegisterDetailsParams) isParams()  {}
func (TeacherSelectionParams) isParams() {}
func (ProfilePictureParams) isParams()   {}
func (AvatarSelectionParams) isParams()  {}
func (WelcomeParams) isParams()          {}
func (HomeParams) isParams()             {}
func (ForgotPasswordParams) isParams()   {}
func (OTPVerificationParams) isParams()  {}
func (ResetPasswordParams) isParams()    {}
func (LeaderboardParams) isParams()      {}
func (ExploreParams) isParams()          {}
func (ProfileParams) isParams()          {}
func (PointsParams) isParams()           {}
func (CategoryListParams) isParams()     {}
func (CategoryDetailParams) isParams()   {}
func (SubCategoryParams) isParams()      {}
func (ExamListParams) isParams()         {}
func (ExamDetailsParams) isParams()      {}
func (ExamQuestionParams) isParams()     {}
func (ExamResultParams) isParams()       {}
func (ExamSolutionParams) isParams()     {}
func (TeacherProfileParams) isParams()   {}
func (StudentListParams) isParams()      {}
func (StudentAnalyticsParams) isParams() {}
func (TeacherExamListParams) isParams()  {}

func requireField(v, name string) error {
	if strings.TrimSpace(v) == "" {
		return dErrors.New(dErrors.CodeContractViolation, name+" is required")
	}
	return nil
}

func requireRole(r Role) error {
	if !r.IsValid() {
		return dErrors.New(dErrors.CodeContractViolation, "role is required")
	}
	return nil
}
