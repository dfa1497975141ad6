package models

// Action is a discrete event delivered to the flow: a button press, a timer
// firing, or the result of a network call the flow asked for.
type Action interface {
	Name() string
	isAction()
}

// Teacher is an entry of the TeacherSelection list.
type Teacher struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	Organization string
}

func (t Teacher) DisplayName() string {
	return t.FirstName + " " + t.LastName
}

type (
	// TimerElapsed is delivered when a timed screen's delay runs out.
	TimerElapsed struct{}

	GetStarted     struct{}
	SignUp         struct{}
	LoginNow       struct{}
	ForgotPassword struct{}

	SubmitLogin struct {
		Email    string
		Password string
		Role     Role
	}
	LoginSucceeded struct {
		Role Role
	}
	LoginFailed struct {
		Message string
	}

	SubmitEmail struct {
		Email string
	}

	// SubmitDetails carries the RegisterDetails form as typed.
	SubmitDetails struct {
		FirstName       string
		LastName        string
		Age             string
		Organization    string
		Gender          Gender
		Role            Role
		Password        string
		ConfirmPassword string
	}

	TeachersLoaded struct {
		Teachers []Teacher
	}
	TeachersFailed struct {
		Message string
	}
	RetryTeachers       struct{}
	ContinueWithTeacher struct {
		TeacherID string
	}

	ChooseFromAvatar  struct{}
	UploadPhoto       struct{}
	ContinueToWelcome struct{}
	LetsGo            struct {
		Avatar string
	}
	RegistrationCompleted struct {
		UserID string
	}
	RegistrationFailed struct {
		Message string
	}

	SendCode struct {
		Email string
	}
	VerifyCode struct {
		Code string
	}
	SubmitNewPassword struct {
		Password        string
		ConfirmPassword string
	}

	Back struct{}

	// OpenTab switches bottom-nav or dashboard tab.
	OpenTab struct {
		Tab ScreenID
	}
	OpenCategory struct {
		CategoryID    string
		CategoryName  string
		CategoryIcon  string
		CategoryColor string
	}
	ViewSubCategories struct{}
	OpenExamList      struct {
		SubCategoryName  string
		SubCategoryIcon  string
		SubCategoryColor string
	}
	OpenExam  struct{}
	StartExam struct {
		ExamTitle      string
		TotalQuestions int
	}
	AnswerQuestion struct {
		Correct bool
	}
	// SubmitExam ends the exam early. Unanswered questions count as wrong.
	SubmitExam struct{}
	RetakeExam struct{}
	SeeAnswers struct{}

	Logout          struct{}
	LogoutCompleted struct{}
)

func (TimerElapsed) Name() string          { return "timerElapsed" }
func (GetStarted) Name() string            { return "getStarted" }
func (SignUp) Name() string                { return "signUp" }
func (LoginNow) Name() string              { return "loginNow" }
func (ForgotPassword) Name() string        { return "forgotPassword" }
func (SubmitLogin) Name() string           { return "submitLogin" }
func (LoginSucceeded) Name() string        { return "loginSucceeded" }
func (LoginFailed) Name() string           { return "loginFailed" }
func (SubmitEmail) Name() string           { return "submitEmail" }
func (SubmitDetails) Name() string         { return "continueWithDetails" }
func (TeachersLoaded) Name() string        { return "teachersLoaded" }
func (TeachersFailed) Name() string        { return "teachersFailed" }
func (RetryTeachers) Name() string         { return "retryTeachers" }
func (ContinueWithTeacher) Name() string   { return "selectedTeacher" }
func (ChooseFromAvatar) Name() string      { return "chooseFromAvatar" }
func (UploadPhoto) Name() string           { return "uploadPhoto" }
func (ContinueToWelcome) Name() string     { return "continue" }
func (LetsGo) Name() string                { return "letsGo" }
func (RegistrationCompleted) Name() string { return "registrationCompleted" }
func (RegistrationFailed) Name() string    { return "registrationFailed" }
func (SendCode) Name() string              { return "sendCode" }
func (VerifyCode) Name() string            { return "verifyCode" }
func (SubmitNewPassword) Name() string     { return "resetPassword" }
func (Back) Name() string                  { return "back" }
func (OpenTab) Name() string               { return "openTab" }
func (OpenCategory) Name() string          { return "openCategory" }
func (ViewSubCategories) Name() string     { return "viewSubCategories" }
func (OpenExamList) Name() string          { return "openExamList" }
func (OpenExam) Name() string              { return "openExam" }
func (StartExam) Name() string             { return "startExam" }
func (AnswerQuestion) Name() string        { return "answerQuestion" }
func (SubmitExam) Name() string            { return "submitExam" }
func (RetakeExam) Name() string            { return "retakeExam" }
func (SeeAnswers) Name() string            { return "seeAnswers" }
func (Logout) Name() string                { return "logout" }
func (LogoutCompleted) Name() string       { return "logoutCompleted" }

func (TimerElapsed) isAction()          {}
func (GetStarted) isAction()            {}
func (SignUp) isAction()                {}
func (LoginNow) isAction()              {}
func (ForgotPassword) isAction()        {}
func (SubmitLogin) isAction()           {}
func (LoginSucceeded) isAction()        {}
func (LoginFailed) isAction()           {}
func (SubmitEmail) isAction()           {}
func (SubmitDetails) isAction()         {}
func (TeachersLoaded) isAction()        {}
func (TeachersFailed) isAction()        {}
func (RetryTeachers) isAction()         {}
func (ContinueWithTeacher) isAction()   {}
func (ChooseFromAvatar) isAction()      {}
func (UploadPhoto) isAction()           {}
func (ContinueToWelcome) isAction()     {}
func (LetsGo) isAction()                {}
func (RegistrationCompleted) isAction() {}
func (RegistrationFailed) isAction()    {}
func (SendCode) isAction()              {}
func (VerifyCode) isAction()            {}
func (SubmitNewPassword) isAction()     {}
func (Back) isAction()                  {}
func (OpenTab) isAction()               {}
func (OpenCategory) isAction()          {}
func (ViewSubCategories) isAction()     {}
func (OpenExamList) isAction()          {}
func (OpenExam) isAction()              {}
func (StartExam) isAction()             {}
func (AnswerQuestion) isAction()        {}
func (SubmitExam) isAction()            {}
func (RetakeExam) isAction()            {}
func (SeeAnswers) isAction()            {}
func (Logout) isAction()                {}
func (LogoutCompleted) isAction()       {}
