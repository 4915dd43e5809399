package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/787516/Matrimonial/internal/models"
	"github.com/787516/Matrimonial/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// Sheet names read from a workbook. Either sheet may be absent.
const (
	PlansSheet    = "Plans"
	ProfilesSheet = "Profiles"
)

const dateLayout = "2006-01-02"

type PlanWriter interface {
	UpsertPlan(ctx context.Context, plan *models.SubscriptionPlan) error
}

type UserWriter interface {
	CreateUser(ctx context.Context, user *models.User) error
}

type ProfileWriter interface {
	CreateProfile(ctx context.Context, profile *models.ProfileDetail) error
	UpsertPreference(ctx context.Context, pref *models.PartnerPreference) error
}

// RowError describes a row that was skipped.
type RowError struct {
	Sheet string
	Row   int // 1-based, as shown in a spreadsheet
	Err   error
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s row %d: %v", e.Sheet, e.Row, e.Err)
}

type Result struct {
	Plans    int
	Profiles int
	Skipped  []RowError
}

// Importer loads plans and members from an xlsx workbook. Bad rows are
// skipped and reported, the rest of the sheet still loads.
type Importer struct {
	plans    PlanWriter
	users    UserWriter
	profiles ProfileWriter
}

func New(plans PlanWriter, users UserWriter, profiles ProfileWriter) *Importer {
	return &Importer{
		plans:    plans,
		users:    users,
		profiles: profiles,
	}
}

// ImportFile opens path and imports it.
func (im *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	return im.Import(ctx, f)
}

func (im *Importer) Import(ctx context.Context, f *excelize.File) (*Result, error) {
	result := &Result{}

	if idx, _ := f.GetSheetIndex(PlansSheet); idx >= 0 {
		if err := im.importPlans(ctx, f, result); err != nil {
			return result, err
		}
	}
	if idx, _ := f.GetSheetIndex(ProfilesSheet); idx >= 0 {
		if err := im.importProfiles(ctx, f, result); err != nil {
			return result, err
		}
	}

	logger.Info("Workbook imported",
		"plans", result.Plans,
		"profiles", result.Profiles,
		"skipped", len(result.Skipped),
	)
	return result, nil
}

func (im *Importer) importPlans(ctx context.Context, f *excelize.File, result *Result) error {
	rows, err := f.GetRows(PlansSheet)
	if err != nil {
		return fmt.Errorf("read %s sheet: %w", PlansSheet, err)
	}
	if len(rows) == 0 {
		return nil
	}

	cols := newColumns(rows[0])
	for i, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return err
		}
		r := record{cols: cols, row: row}
		if r.empty() {
			continue
		}

		plan, err := r.plan()
		if err == nil {
			err = im.plans.UpsertPlan(ctx, plan)
		}
		if err != nil {
			result.Skipped = append(result.Skipped, RowError{Sheet: PlansSheet, Row: i + 2, Err: err})
			continue
		}
		result.Plans++
	}
	return nil
}

func (im *Importer) importProfiles(ctx context.Context, f *excelize.File, result *Result) error {
	rows, err := f.GetRows(ProfilesSheet)
	if err != nil {
		return fmt.Errorf("read %s sheet: %w", ProfilesSheet, err)
	}
	if len(rows) == 0 {
		return nil
	}

	cols := newColumns(rows[0])
	for i, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return err
		}
		r := record{cols: cols, row: row}
		if r.empty() {
			continue
		}

		if err := im.importMember(ctx, r); err != nil {
			result.Skipped = append(result.Skipped, RowError{Sheet: ProfilesSheet, Row: i + 2, Err: err})
			continue
		}
		result.Profiles++
	}
	return nil
}

func (im *Importer) importMember(ctx context.Context, r record) error {
	user, profile, pref, err := r.member()
	if err != nil {
		return err
	}

	if err := im.users.CreateUser(ctx, user); err != nil {
		return err
	}
	profile.UserID = user.ID
	if err := im.profiles.CreateProfile(ctx, profile); err != nil {
		return err
	}
	if pref == nil {
		return nil
	}
	pref.ProfileID = profile.ID
	return im.profiles.UpsertPreference(ctx, pref)
}

// columns maps a normalized header name to its index.
type columns map[string]int

func newColumns(header []string) columns {
	cols := make(columns, len(header))
	for i, h := range header {
		cols[normalizeHeader(h)] = i
	}
	return cols
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "")
	return strings.ReplaceAll(h, "_", "")
}

type record struct {
	cols columns
	row  []string
}

func (r record) get(name string) string {
	i, ok := r.cols[normalizeHeader(name)]
	if !ok || i >= len(r.row) {
		return ""
	}
	return strings.TrimSpace(r.row[i])
}

func (r record) empty() bool {
	for _, v := range r.row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (r record) intValue(name string) (int, error) {
	v := r.get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", name, v)
	}
	return n, nil
}

func (r record) optionalInt(name string) (*int, error) {
	if r.get(name) == "" {
		return nil, nil
	}
	n, err := r.intValue(name)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// boolValue accepts the spellings spreadsheets tend to produce.
// Empty cells yield def.
func (r record) boolValue(name string, def bool) (bool, error) {
	switch strings.ToLower(r.get(name)) {
	case "":
		return def, nil
	case "1", "true", "yes", "y":
		return true, nil
	case "0", "false", "no", "n":
		return false, nil
	default:
		return false, fmt.Errorf("%s: %q is not a yes/no value", name, r.get(name))
	}
}

func (r record) plan() (*models.SubscriptionPlan, error) {
	name := strings.ToUpper(r.get("Name"))
	if name == "" {
		return nil, fmt.Errorf("Name is required")
	}

	price, err := r.intValue("Price")
	if err != nil {
		return nil, err
	}
	days, err := r.intValue("DurationInDays")
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		return nil, fmt.Errorf("DurationInDays must be positive")
	}
	views, err := r.intValue("MaxProfileViews")
	if err != nil {
		return nil, err
	}

	plan := &models.SubscriptionPlan{
		Name:            name,
		Price:           int64(price),
		DurationInDays:  days,
		MaxProfileViews: views,
		SupportLevel:    r.get("SupportLevel"),
	}
	flags := []struct {
		column string
		dst    *bool
	}{
		{"UnlimitedProfileViews", &plan.UnlimitedProfileViews},
		{"ChatAllowed", &plan.ChatAllowed},
		{"UnlimitedInterest", &plan.UnlimitedInterest},
		{"CanViewContacts", &plan.CanViewContacts},
	}
	for _, flag := range flags {
		v, err := r.boolValue(flag.column, false)
		if err != nil {
			return nil, err
		}
		*flag.dst = v
	}
	return plan, nil
}

func (r record) member() (*models.User, *models.ProfileDetail, *models.PartnerPreference, error) {
	user := &models.User{
		FullName: r.get("FullName"),
		Email:    strings.ToLower(r.get("Email")),
		Gender:   r.get("Gender"),
		Status:   models.UserStatusActive,
	}
	if user.FullName == "" || user.Email == "" {
		return nil, nil, nil, fmt.Errorf("FullName and Email are required")
	}

	height, err := r.intValue("Height")
	if err != nil {
		return nil, nil, nil, err
	}
	visible, err := r.boolValue("Visible", true)
	if err != nil {
		return nil, nil, nil, err
	}

	profile := &models.ProfileDetail{
		Religion:         r.get("Religion"),
		Community:        r.get("Community"),
		MotherTongue:     r.get("MotherTongue"),
		City:             r.get("City"),
		State:            r.get("State"),
		MaritalStatus:    r.get("MaritalStatus"),
		Height:           height,
		ProfilePhoto:     r.get("Photo"),
		IsProfileVisible: visible,
	}
	if dob := r.get("DateOfBirth"); dob != "" {
		t, err := time.Parse(dateLayout, dob)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("DateOfBirth: %q is not YYYY-MM-DD", dob)
		}
		if t.After(time.Now()) {
			return nil, nil, nil, fmt.Errorf("DateOfBirth is in the future")
		}
		profile.DateOfBirth = &t
	}

	pref, err := r.preference()
	if err != nil {
		return nil, nil, nil, err
	}
	return user, profile, pref, nil
}

// preference returns nil when every Pref column is blank.
func (r record) preference() (*models.PartnerPreference, error) {
	pref := &models.PartnerPreference{
		Religion:     r.get("PrefReligion"),
		Caste:        r.get("PrefCaste"),
		MotherTongue: r.get("PrefMotherTongue"),
		City:         r.get("PrefCity"),
		State:        r.get("PrefState"),
	}

	var err error
	ranges := []struct {
		column string
		dst    **int
	}{
		{"PrefAgeMin", &pref.AgeMin},
		{"PrefAgeMax", &pref.AgeMax},
		{"PrefHeightMin", &pref.HeightMin},
		{"PrefHeightMax", &pref.HeightMax},
	}
	for _, rg := range ranges {
		if *rg.dst, err = r.optionalInt(rg.column); err != nil {
			return nil, err
		}
	}

	if pref.AgeMin != nil && pref.AgeMax != nil && *pref.AgeMin > *pref.AgeMax {
		return nil, fmt.Errorf("PrefAgeMin exceeds PrefAgeMax")
	}
	if pref.HeightMin != nil && pref.HeightMax != nil && *pref.HeightMin > *pref.HeightMax {
		return nil, fmt.Errorf("PrefHeightMin exceeds PrefHeightMax")
	}

	if pref.Religion == "" && pref.Caste == "" && pref.MotherTongue == "" && pref.City == "" &&
		pref.State == "" && !pref.HasAgeRange() && !pref.HasHeightRange() {
		return nil, nil
	}
	return pref, nil
}
