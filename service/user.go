package service

import (
	"errors"
	"os"
	"regexp"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"zapchat/model"
	"zapchat/platform"
)

var logger = platform.Logger

type UserService struct {
}

type LoginInput struct {
	FullName       string `json:"full_name"`
	WhatsappNumber string `json:"whatsapp_number"`
}

var numberRegex = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

// Login identifies the user by WhatsApp number: an existing user gets the
// typed name and login time refreshed, an unknown number becomes a new
// user. Returns the user and a signed access token.
func (service *UserService) Login(input *LoginInput) (*model.User, string, error) {
	if input.FullName == "" || !numberRegex.MatchString(input.WhatsappNumber) {
		return nil, "", errors.New("invalid name or whatsapp number")
	}

	user, err := model.GetUserByWhatsappNumber(input.WhatsappNumber)
	switch {
	case err == nil:
		if err := model.UpdateUserLogin(user.ID, input.FullName); err != nil {
			logger.Warnf("failed to refresh login for user %d: %s", user.ID, err)
		}
		user.FullName = input.FullName
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = &model.User{
			WhatsappNumber: input.WhatsappNumber,
			FullName:       input.FullName,
		}
		if err := model.CreateUser(user); err != nil {
			return nil, "", errors.New("internal server error")
		}
	default:
		return nil, "", errors.New("failed to get user")
	}

	ts := &TokenService{}
	token, err := ts.CreateToken(user)
	if err != nil {
		logger.Warnf("error generating token: %s", err)
		return nil, "", errors.New("failed to generate token")
	}
	return user, token.AccessToken, nil
}

// AdminLogin additionally checks the shared admin password against the
// bcrypt hash from configuration.
func (service *UserService) AdminLogin(whatsappNumber, password string) (*model.User, string, error) {
	user, err := model.GetUserByWhatsappNumber(whatsappNumber)
	if err != nil {
		return nil, "", errors.New("invalid credentials")
	}
	if !user.IsAdmin {
		return nil, "", errors.New("invalid credentials")
	}

	hash := os.Getenv("ADMIN_PASSWORD_HASH")
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, "", errors.New("invalid credentials")
	}

	ts := &TokenService{}
	token, err := ts.CreateToken(user)
	if err != nil {
		logger.Warnf("error generating token: %s", err)
		return nil, "", errors.New("failed to generate token")
	}
	return user, token.AccessToken, nil
}
