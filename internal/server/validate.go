package server

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/aTrapDeer/utworld/internal/model"
	"github.com/aTrapDeer/utworld/internal/util"
)

var slugRule = validation.By(func(value any) error {
	v, _ := validation.Indirect(value)
	s, _ := v.(string)
	if s == "" || util.IsValidSlug(s) {
		return nil
	}
	return errors.New("must contain only lowercase letters, digits and hyphens")
})

func validateLogin(in *model.LoginRequest) error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Email, validation.Required, validation.Length(3, 255)),
		validation.Field(&in.Password, validation.Required),
	)
}

func validateSectionCreate(in *model.SectionCreate) error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Slug, validation.Required, validation.Length(1, 50), slugRule),
		validation.Field(&in.Title, validation.Required, validation.Length(1, 100)),
	)
}

func validateSectionUpdate(in *model.SectionUpdate) error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Slug, validation.NilOrNotEmpty, validation.Length(1, 50), slugRule),
		validation.Field(&in.Title, validation.NilOrNotEmpty, validation.Length(1, 100)),
	)
}

func validateProjectCreate(in *model.ProjectCreate) error {
	return validation.ValidateStruct(in,
		validation.Field(&in.SectionID, validation.Required),
		validation.Field(&in.Slug, validation.Required, validation.Length(1, 100), slugRule),
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Subtitle, validation.Length(0, 300)),
		validation.Field(&in.ThumbnailURL, validation.Length(0, 500)),
	)
}

func validateProjectUpdate(in *model.ProjectUpdate) error {
	return validation.ValidateStruct(in,
		validation.Field(&in.SectionID, validation.NilOrNotEmpty),
		validation.Field(&in.Slug, validation.NilOrNotEmpty, validation.Length(1, 100), slugRule),
		validation.Field(&in.Title, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&in.Subtitle, validation.By(maxOptional(300))),
		validation.Field(&in.ThumbnailURL, validation.By(maxOptional(500))),
	)
}

func maxOptional(n int) validation.RuleFunc {
	return func(value any) error {
		o, _ := value.(model.OptionalString)
		if o.Value != nil && len([]rune(*o.Value)) > n {
			return validation.ErrLengthTooLong.SetParams(map[string]any{"max": n})
		}
		return nil
	}
}
