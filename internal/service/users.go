package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/yourname/fitcoach/internal"
	"github.com/yourname/fitcoach/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

var validate = validator.New()

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`

	Age    int     `json:"age,omitempty" validate:"omitempty,gte=5,lte=120"`
	Gender string  `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	Height float64 `json:"height,omitempty" validate:"omitempty,gte=50,lte=300"`
	Weight float64 `json:"weight,omitempty" validate:"omitempty,gte=10,lte=500"`

	FitnessLevel      string `json:"fitness_level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	FitnessGoal       string `json:"fitness_goal,omitempty" validate:"omitempty,oneof=weight_loss weight_gain muscle_gain maintenance endurance"`
	WorkoutPreference string `json:"workout_preference,omitempty" validate:"omitempty,oneof=home gym outdoor hybrid"`
	DietPreference    string `json:"diet_preference,omitempty" validate:"omitempty,oneof=vegetarian non_vegetarian vegan keto paleo"`
}

func ValidateRegisterRequest(body *RegisterRequest) error {
	return validate.Struct(body)
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func RegisterUser(ctx context.Context, users storage.UserRepository, body *RegisterRequest) (*internal.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &internal.User{
		ID:             uuid.NewString(),
		Email:          body.Email,
		Username:       body.Username,
		HashedPassword: string(hash),
		FullName:       body.FullName,

		Age:    body.Age,
		Gender: body.Gender,
		Height: body.Height,
		Weight: body.Weight,

		FitnessLevel:      defaultString(body.FitnessLevel, "beginner"),
		FitnessGoal:       defaultString(body.FitnessGoal, "maintenance"),
		WorkoutPreference: defaultString(body.WorkoutPreference, "home"),
		DietPreference:    defaultString(body.DietPreference, "vegetarian"),

		Role:      internal.RoleUser,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// AuthenticateUser resolves login (username or email) and checks the
// password. Both failure modes return ErrNotFound so callers cannot
// distinguish an unknown account from a wrong password.
func AuthenticateUser(ctx context.Context, users storage.UserRepository, login, password string) (*internal.User, error) {
	user, err := users.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, internal.ErrNotFound) {
			return nil, internal.ErrNotFound
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		return nil, internal.ErrNotFound
	}
	return user, nil
}

type ProfileUpdateRequest struct {
	FullName string  `json:"full_name,omitempty"`
	Age      int     `json:"age,omitempty" validate:"omitempty,gte=5,lte=120"`
	Gender   string  `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	Height   float64 `json:"height,omitempty" validate:"omitempty,gte=50,lte=300"`
	Weight   float64 `json:"weight,omitempty" validate:"omitempty,gte=10,lte=500"`

	FitnessLevel      string `json:"fitness_level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	FitnessGoal       string `json:"fitness_goal,omitempty" validate:"omitempty,oneof=weight_loss weight_gain muscle_gain maintenance endurance"`
	WorkoutPreference string `json:"workout_preference,omitempty" validate:"omitempty,oneof=home gym outdoor hybrid"`
	DietPreference    string `json:"diet_preference,omitempty" validate:"omitempty,oneof=vegetarian non_vegetarian vegan keto paleo"`
}

func ValidateProfileUpdateRequest(body *ProfileUpdateRequest) error {
	return validate.Struct(body)
}

// UpdateProfile applies the non-zero fields of the request to the user.
func UpdateProfile(ctx context.Context, users storage.UserRepository, user *internal.User, body *ProfileUpdateRequest) (*internal.User, error) {
	if body.FullName != "" {
		user.FullName = body.FullName
	}
	if body.Age != 0 {
		user.Age = body.Age
	}
	if body.Gender != "" {
		user.Gender = body.Gender
	}
	if body.Height != 0 {
		user.Height = body.Height
	}
	if body.Weight != 0 {
		user.Weight = body.Weight
	}
	if body.FitnessLevel != "" {
		user.FitnessLevel = body.FitnessLevel
	}
	if body.FitnessGoal != "" {
		user.FitnessGoal = body.FitnessGoal
	}
	if body.WorkoutPreference != "" {
		user.WorkoutPreference = body.WorkoutPreference
	}
	if body.DietPreference != "" {
		user.DietPreference = body.DietPreference
	}
	user.UpdatedAt = time.Now()
	if err := users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
