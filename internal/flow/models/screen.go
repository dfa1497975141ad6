package models

import (
	dErrors "neoquiz/pkg/domain-errors"
)

// ScreenID names a screen of the stack navigator.
type ScreenID string

const (
	ScreenSplash           ScreenID = "Splash"
	ScreenOnboarding       ScreenID = "Onboarding"
	ScreenLogin            ScreenID = "Login"
	ScreenRegister         ScreenID = "Register"
	ScreenRegisterDetails  ScreenID = "RegisterDetails"
	ScreenTeacherSelection ScreenID = "TeacherSelection"
	ScreenProfilePicture   ScreenID = "ProfilePicture"
	ScreenAvatarSelection  ScreenID = "AvatarSelection"
	ScreenWelcome          ScreenID = "Welcome"
	ScreenHome             ScreenID = "Home"
	ScreenForgotPassword   ScreenID = "ForgotPassword"
	ScreenOTPVerification  ScreenID = "OTPVerification"
	ScreenResetPassword    ScreenID = "ResetPassword"

	// Student tabs and exam screens.
	ScreenLeaderboard    ScreenID = "Leaderboard"
	ScreenExplore        ScreenID = "Explore"
	ScreenProfile        ScreenID = "Profile"
	ScreenPoints         ScreenID = "Points"
	ScreenCategoryList   ScreenID = "CategoryList"
	ScreenCategoryDetail ScreenID = "CategoryDetail"
	ScreenSubCategory    ScreenID = "SubCategory"
	ScreenExamList       ScreenID = "ExamList"
	ScreenExamDetails    ScreenID = "ExamDetails"
	ScreenExamQuestion   ScreenID = "ExamQuestion"
	ScreenExamResult     ScreenID = "ExamResult"
	ScreenExamSolution   ScreenID = "ExamSolution"

	// Teacher dashboard screens.
	ScreenTeacherProfile   ScreenID = "TeacherProfile"
	ScreenStudentList      ScreenID = "StudentList"
	ScreenStudentAnalytics ScreenID = "StudentAnalytics"
	ScreenTeacherExamList  ScreenID = "TeacherExamList"
)

var allScreens = []ScreenID{
	ScreenSplash, ScreenOnboarding, ScreenLogin, ScreenRegister, ScreenRegisterDetails,
	ScreenTeacherSelection, ScreenProfilePicture, ScreenAvatarSelection, ScreenWelcome,
	ScreenHome, ScreenForgotPassword, ScreenOTPVerification, ScreenResetPassword,
	ScreenLeaderboard, ScreenExplore, ScreenProfile, ScreenPoints, ScreenCategoryList,
	ScreenCategoryDetail, ScreenSubCategory, ScreenExamList, ScreenExamDetails,
	ScreenExamQuestion, ScreenExamResult, ScreenExamSolution, ScreenTeacherProfile,
	ScreenStudentList, ScreenStudentAnalytics, ScreenTeacherExamList,
}

// AllScreens returns every screen in declaration order.
func AllScreens() []ScreenID {
	return append([]ScreenID(nil), allScreens...)
}

// IsValid checks if the screen is one of the declared screens.
func (s ScreenID) IsValid() bool {
	for _, known := range allScreens {
		if s == known {
			return true
		}
	}
	return false
}

func (s ScreenID) String() string {
	return string(s)
}

// ParseScreenID validates a screen name coming from outside the process.
func ParseScreenID(s string) (ScreenID, error) {
	id := ScreenID(s)
	if !id.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown screen: "+s)
	}
	return id, nil
}
