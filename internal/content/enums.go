package content

import "strings"

// Icon names a highlight icon. Unknown names render as IconAward.
type Icon string

const (
	IconAward        Icon = "award"
	IconCloud        Icon = "cloud"
	IconZap          Icon = "zap"
	IconTrendingDown Icon = "trending-down"
	IconCPU          Icon = "cpu"
	IconActivity     Icon = "activity"
	IconMusic        Icon = "music"
	IconUsers        Icon = "users"
	IconCalendar     Icon = "calendar"
	IconMapPin       Icon = "mappin"
)

var knownIcons = map[Icon]bool{
	IconAward: true, IconCloud: true, IconZap: true, IconTrendingDown: true, IconCPU: true,
	IconActivity: true, IconMusic: true, IconUsers: true, IconCalendar: true, IconMapPin: true,
}

// ResolveIcon maps a stored icon name to a known Icon.
func ResolveIcon(name string) Icon {
	if i := Icon(name); knownIcons[i] {
		return i
	}
	return IconAward
}

// Platform is a music platform a set can live on.
type Platform string

const (
	PlatformSoundCloud Platform = "soundcloud"
	PlatformYouTube    Platform = "youtube"
	PlatformMixcloud   Platform = "mixcloud"
	PlatformSpotify    Platform = "spotify"
)

type platformInfo struct {
	label string
	logo  string
}

var platforms = map[Platform]platformInfo{
	PlatformSoundCloud: {"SoundCloud", "/images/logo-soundcloud.svg"},
	PlatformYouTube:    {"YouTube", "/images/logo-youtube.svg"},
	PlatformMixcloud:   {"Mixcloud", ""},
	PlatformSpotify:    {"Spotify", ""},
}

// Platforms lists the platforms in display order.
func Platforms() []Platform {
	return []Platform{PlatformSoundCloud, PlatformYouTube, PlatformMixcloud, PlatformSpotify}
}

func (p Platform) Valid() bool { _, ok := platforms[p]; return ok }

// Label is the display name, e.g. "SoundCloud".
func (p Platform) Label() string { return platforms[p].label }

// Logo is the site-relative logo path, or "".
func (p Platform) Logo() string { return platforms[p].logo }

// PlatformFromName maps a stored platform name such as "YouTube" to a
// Platform, case-insensitively. ok is false for unknown names.
func PlatformFromName(name string) (Platform, bool) {
	p := Platform(strings.ToLower(strings.TrimSpace(name)))
	return p, p.Valid()
}

// Social is a contact link platform.
type Social string

const (
	SocialInstagram  Social = "instagram"
	SocialSoundCloud Social = "soundcloud"
	SocialYouTube    Social = "youtube"
	SocialMixcloud   Social = "mixcloud"
	SocialSpotify    Social = "spotify"
	SocialFacebook   Social = "facebook"
	SocialTwitter    Social = "twitter"
	SocialEmail      Social = "email"
)

var socialLabels = map[Social]string{
	SocialInstagram:  "Instagram",
	SocialSoundCloud: "SoundCloud",
	SocialYouTube:    "YouTube",
	SocialMixcloud:   "Mixcloud",
	SocialSpotify:    "Spotify",
	SocialFacebook:   "Facebook",
	SocialTwitter:    "Twitter/X",
	SocialEmail:      "Email",
}

// ResolveSocial maps a stored id to a Social, falling back to Instagram.
func ResolveSocial(id string) Social {
	if _, ok := socialLabels[Social(id)]; ok {
		return Social(id)
	}
	return SocialInstagram
}

func (s Social) Label() string { return socialLabels[s] }
