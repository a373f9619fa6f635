package portal

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed profile.yaml
var defaultProfile []byte

// ErrInvalidProfile is returned when a profile misses a URL or selector.
var ErrInvalidProfile = errors.New("invalid portal profile")

// URLs are the portal pages HAF navigates to.
type URLs struct {
	Portal        string `yaml:"portal"`
	SmartRecorder string `yaml:"smart_recorder"`
	TicketPrefix  string `yaml:"ticket_prefix"`
}

// TicketURL returns the detail page of ticket id.
func (u URLs) TicketURL(id string) string {
	return u.TicketPrefix + id
}

// TicketID strips the ticket prefix from a detail page URL.
func (u URLs) TicketID(url string) string {
	return strings.TrimPrefix(url, u.TicketPrefix)
}

// Login holds the Microsoft sign-in pages and fields.
type Login struct {
	MicrosoftPrefix string `yaml:"microsoft_prefix"`
	ApprovalURL     string `yaml:"approval_url"`
	PromptSuffix    string `yaml:"prompt_suffix"`
	AccountTile     string `yaml:"account_tile"`
	EmailInput      string `yaml:"email_input"`
	PasswordInput   string `yaml:"password_input"`
	StaySignedIn    string `yaml:"stay_signed_in"`
	SubmitButton    string `yaml:"submit_button"`
	RememberMFA     string `yaml:"remember_mfa"`
}

// Dropdown is a button that opens a list and the option to pick from it.
type Dropdown struct {
	Button string `yaml:"button"`
	Option string `yaml:"option"`
}

// Selectors are the XPath expressions of every element the procedures touch.
type Selectors struct {
	RecorderInput      string     `yaml:"recorder_input"`
	CatalogItem        string     `yaml:"catalog_item"`
	CreateButton       string     `yaml:"create_button"`
	EditorOpen         []string   `yaml:"editor_open"`
	EditorReopen       string     `yaml:"editor_reopen"`
	TitleInput         string     `yaml:"title_input"`
	StatusButton       string     `yaml:"status_button"`
	StatusOngoing      string     `yaml:"status_ongoing"`
	StatusConcluded    string     `yaml:"status_concluded"`
	StatusReasonButton string     `yaml:"status_reason_button"`
	StatusReasonSolved string     `yaml:"status_reason_solved"`
	Classification     []Dropdown `yaml:"classification"`
	AssignToMe         string     `yaml:"assign_to_me"`
	SaveButton         string     `yaml:"save_button"`
	SolutionTextarea   string     `yaml:"solution_textarea"`
	DesignationOpen    string     `yaml:"designation_open"`
	SearchScopeButton  string     `yaml:"search_scope_button"`
	SearchScopeAll     string     `yaml:"search_scope_all"`
	TeamButton         string     `yaml:"team_button"`
	TeamFilter         string     `yaml:"team_filter"`
	TeamAssign         string     `yaml:"team_assign"`
	TeamConfirm        string     `yaml:"team_confirm"`
}

// Delays pace the steps whose readiness the page does not expose.
type Delays struct {
	Animation       time.Duration `yaml:"animation"`
	UserLoad        time.Duration `yaml:"user_load"`
	TicketMenu      time.Duration `yaml:"ticket_menu"`
	TicketPage      time.Duration `yaml:"ticket_page"`
	Editor          time.Duration `yaml:"editor"`
	Designation     time.Duration `yaml:"designation"`
	DesignationMenu time.Duration `yaml:"designation_menu"`
	TeamLoad        time.Duration `yaml:"team_load"`
	LoginAnimation  time.Duration `yaml:"login_animation"`
}

// Profile describes one deployment of the portal.
type Profile struct {
	URLs      URLs      `yaml:"urls"`
	Login     Login     `yaml:"login"`
	Selectors Selectors `yaml:"selectors"`
	Delays    Delays    `yaml:"delays"`
}

// DefaultProfile returns the built-in profile.
func DefaultProfile() Profile {
	var p Profile
	if err := yaml.Unmarshal(defaultProfile, &p); err != nil {
		panic(fmt.Sprintf("portal: embedded profile: %v", err))
	}
	return p
}

// LoadProfile returns the built-in profile with the YAML file at path merged
// over it. An empty path returns the built-in profile.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	if path == "" {
		return p, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read portal profile: %w", err)
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Profile{}, fmt.Errorf("decode portal profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Validate checks that every URL and selector the procedures use is set.
func (p Profile) Validate() error {
	required := map[string]string{
		"urls.portal":                    p.URLs.Portal,
		"urls.smart_recorder":            p.URLs.SmartRecorder,
		"urls.ticket_prefix":             p.URLs.TicketPrefix,
		"selectors.recorder_input":       p.Selectors.RecorderInput,
		"selectors.catalog_item":         p.Selectors.CatalogItem,
		"selectors.create_button":        p.Selectors.CreateButton,
		"selectors.editor_reopen":        p.Selectors.EditorReopen,
		"selectors.title_input":          p.Selectors.TitleInput,
		"selectors.status_button":        p.Selectors.StatusButton,
		"selectors.status_ongoing":       p.Selectors.StatusOngoing,
		"selectors.status_concluded":     p.Selectors.StatusConcluded,
		"selectors.status_reason_button": p.Selectors.StatusReasonButton,
		"selectors.status_reason_solved": p.Selectors.StatusReasonSolved,
		"selectors.assign_to_me":         p.Selectors.AssignToMe,
		"selectors.save_button":          p.Selectors.SaveButton,
		"selectors.solution_textarea":    p.Selectors.SolutionTextarea,
		"selectors.designation_open":     p.Selectors.DesignationOpen,
		"selectors.search_scope_button":  p.Selectors.SearchScopeButton,
		"selectors.search_scope_all":     p.Selectors.SearchScopeAll,
		"selectors.team_button":          p.Selectors.TeamButton,
		"selectors.team_filter":          p.Selectors.TeamFilter,
		"selectors.team_assign":          p.Selectors.TeamAssign,
		"selectors.team_confirm":         p.Selectors.TeamConfirm,
	}
	var missing []string
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(p.Selectors.EditorOpen) == 0 {
		missing = append(missing, "selectors.editor_open")
	}
	for i, d := range p.Selectors.Classification {
		if d.Button == "" || d.Option == "" {
			missing = append(missing, fmt.Sprintf("selectors.classification[%d]", i))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: missing %s", ErrInvalidProfile, strings.Join(missing, ", "))
	}
	return nil
}

// WithoutDelays returns a copy with every delay set to zero.
func (p Profile) WithoutDelays() Profile {
	p.Delays = Delays{}
	return p
}
