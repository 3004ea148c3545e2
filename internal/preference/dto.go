package preference

import (
	"github.com/frahmantamala/workforce-portal/internal"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type ChannelsDTO struct {
	Email *bool `json:"email" validate:"required"`
	InApp *bool `json:"in_app" validate:"required"`
}

type CategoriesDTO struct {
	Timesheets *bool `json:"timesheets" validate:"required"`
	Expenses   *bool `json:"expenses" validate:"required"`
	Deadlines  *bool `json:"deadlines" validate:"required"`
	System     *bool `json:"system" validate:"required"`
}

type QuietHoursDTO struct {
	Start   string `json:"start" validate:"required,datetime=15:04"`
	End     string `json:"end" validate:"required,datetime=15:04"`
	Enabled bool   `json:"enabled"`
}

// UpdatePreferencesDTO replaces a user's preferences wholesale.
type UpdatePreferencesDTO struct {
	Channels   ChannelsDTO   `json:"channels"`
	Categories CategoriesDTO `json:"categories"`
	Frequency  string        `json:"frequency" validate:"required,oneof=immediate daily weekly"`
	QuietHours QuietHoursDTO `json:"quiet_hours"`
}

func (dto UpdatePreferencesDTO) Validate() error {
	err := validate.Struct(dto)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	details := internal.ValidationErrors{}
	for _, fe := range fieldErrs {
		details.Errors = append(details.Errors, internal.ValidationError{
			Field:   fe.Namespace(),
			Message: fe.Error(),
			Code:    fe.Tag(),
		})
	}
	return internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).WithDetails(details)
}

func (dto UpdatePreferencesDTO) ToPreferences(userID int64) *Preferences {
	return &Preferences{
		UserID:   userID,
		Channels: Channels{Email: *dto.Channels.Email, InApp: *dto.Channels.InApp},
		Categories: Categories{
			Timesheets: *dto.Categories.Timesheets,
			Expenses:   *dto.Categories.Expenses,
			Deadlines:  *dto.Categories.Deadlines,
			System:     *dto.Categories.System,
		},
		Frequency:  Frequency(dto.Frequency),
		QuietHours: QuietHours{Start: dto.QuietHours.Start, End: dto.QuietHours.End, Enabled: dto.QuietHours.Enabled},
	}
}
