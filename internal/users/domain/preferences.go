package domain

import "time"

// Preferences is the statically-typed per-user settings schema. Updates go
// through PreferencesPatch so partial updates are explicit rather than a
// deep merge of untyped maps.
type Preferences struct {
	Theme      string `json:"theme"`
	Language   string `json:"language"`
	Timezone   string `json:"timezone"`
	DateFormat string `json:"dateFormat"`
	TimeFormat string `json:"timeFormat"`

	Notifications NotificationPrefs `json:"notifications"`
	Privacy       PrivacyPrefs      `json:"privacy"`
	Email         EmailPrefs        `json:"emailPreferences"`
}

type NotificationPrefs struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
	SMS   bool `json:"sms"`
}

type PrivacyPrefs struct {
	ProfileVisible bool `json:"profileVisible"`
	ShowEmail      bool `json:"showEmail"`
	ShowPhone      bool `json:"showPhone"`
}

type EmailPrefs struct {
	Newsletter     bool `json:"newsletter"`
	ProductUpdates bool `json:"productUpdates"`
	SecurityAlerts bool `json:"securityAlerts"`
}

// DefaultPreferences returns the settings every user starts with.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:      "light",
		Language:   "en",
		Timezone:   "UTC",
		DateFormat: "MM/DD/YYYY",
		TimeFormat: "12h",
		Notifications: NotificationPrefs{
			Email: true,
			Push:  true,
			SMS:   false,
		},
		Privacy: PrivacyPrefs{
			ProfileVisible: true,
			ShowEmail:      false,
			ShowPhone:      false,
		},
		Email: EmailPrefs{
			Newsletter:     false,
			ProductUpdates: true,
			SecurityAlerts: true,
		},
	}
}

// PreferencesPatch is a partial update; nil fields are left unchanged.
type PreferencesPatch struct {
	Theme      *string `json:"theme"`
	Language   *string `json:"language"`
	Timezone   *string `json:"timezone"`
	DateFormat *string `json:"dateFormat"`
	TimeFormat *string `json:"timeFormat"`

	Notifications *NotificationPrefsPatch `json:"notifications"`
	Privacy       *PrivacyPrefsPatch      `json:"privacy"`
	Email         *EmailPrefsPatch        `json:"emailPreferences"`
}

type NotificationPrefsPatch struct {
	Email *bool `json:"email"`
	Push  *bool `json:"push"`
	SMS   *bool `json:"sms"`
}

type PrivacyPrefsPatch struct {
	ProfileVisible *bool `json:"profileVisible"`
	ShowEmail      *bool `json:"showEmail"`
	ShowPhone      *bool `json:"showPhone"`
}

type EmailPrefsPatch struct {
	Newsletter     *bool `json:"newsletter"`
	ProductUpdates *bool `json:"productUpdates"`
	SecurityAlerts *bool `json:"securityAlerts"`
}

// Apply copies every non-nil patch field onto p.
func (p *Preferences) Apply(patch PreferencesPatch) {
	setString(&p.Theme, patch.Theme)
	setString(&p.Language, patch.Language)
	setString(&p.Timezone, patch.Timezone)
	setString(&p.DateFormat, patch.DateFormat)
	setString(&p.TimeFormat, patch.TimeFormat)

	if n := patch.Notifications; n != nil {
		setBool(&p.Notifications.Email, n.Email)
		setBool(&p.Notifications.Push, n.Push)
		setBool(&p.Notifications.SMS, n.SMS)
	}
	if pr := patch.Privacy; pr != nil {
		setBool(&p.Privacy.ProfileVisible, pr.ProfileVisible)
		setBool(&p.Privacy.ShowEmail, pr.ShowEmail)
		setBool(&p.Privacy.ShowPhone, pr.ShowPhone)
	}
	if e := patch.Email; e != nil {
		setBool(&p.Email.Newsletter, e.Newsletter)
		setBool(&p.Email.ProductUpdates, e.ProductUpdates)
		setBool(&p.Email.SecurityAlerts, e.SecurityAlerts)
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

// UserPreferences ties a settings document to a user.
type UserPreferences struct {
	UserID    int64       `json:"userId"`
	Settings  Preferences `json:"settings"`
	UpdatedAt *time.Time  `json:"updatedAt"`
}
