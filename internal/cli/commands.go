package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/787516/Matrimonial/internal/database"
	"github.com/787516/Matrimonial/internal/importer"
	"github.com/787516/Matrimonial/internal/repositories"
	"github.com/787516/Matrimonial/internal/security"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

var seedPlansCmd = &cobra.Command{
	Use:   "seed-plans",
	Short: "Insert the default FREE/SILVER/GOLD/PLATINUM plans if missing",
	Args:  cobra.NoArgs,
	RunE:  runSeedPlans,
}

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Import plans and member profiles from a workbook",
	Long: `Import reads the "Plans" and "Profiles" sheets of an xlsx workbook.

Plans columns: Name, Price, DurationInDays, MaxProfileViews,
UnlimitedProfileViews, ChatAllowed, UnlimitedInterest, CanViewContacts,
SupportLevel. Plans are matched by name and overwritten.

Profiles columns: FullName, Email, Gender, DateOfBirth (YYYY-MM-DD), Height,
Religion, Community, MotherTongue, City, State, MaritalStatus, Photo,
Visible, and the optional partner preference columns PrefAgeMin, PrefAgeMax,
PrefHeightMin, PrefHeightMax, PrefReligion, PrefCaste, PrefMotherTongue,
PrefCity, PrefState.

Rows that fail validation are reported and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List subscription plans",
	Args:  cobra.NoArgs,
	RunE:  runPlans,
}

var subscribeCmd = &cobra.Command{
	Use:   "subscribe <user-id> <plan>",
	Short: "Activate a plan for a user starting now",
	Args:  cobra.ExactArgs(2),
	RunE:  runSubscribe,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	db, err := connect()
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
	return nil
}

func runSeedPlans(cmd *cobra.Command, _ []string) error {
	db, err := connect()
	if err != nil {
		return err
	}
	if err := database.SeedPlans(db); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "default plans present")
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	db, err := connect()
	if err != nil {
		return err
	}

	profiles := repositories.NewProfileRepository(db)
	im := importer.New(repositories.NewSubscriptionRepository(db), repositories.NewUserRepository(db), profiles)

	result, err := im.ImportFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "imported %d plans and %d profiles\n", result.Plans, result.Profiles)
	for _, skipped := range result.Skipped {
		_, _ = fmt.Fprintf(out, "skipped %s\n", skipped.Error())
	}
	return nil
}

func runPlans(cmd *cobra.Command, _ []string) error {
	db, err := connect()
	if err != nil {
		return err
	}

	plans, err := repositories.NewSubscriptionRepository(db).ListPlans(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tPRICE\tDAYS\tVIEWS\tCHAT\tSUPPORT")
	for _, p := range plans {
		views := strconv.Itoa(p.MaxProfileViews)
		if p.UnlimitedProfileViews {
			views = "unlimited"
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%t\t%s\n", p.Name, p.Price, p.DurationInDays, views, p.ChatAllowed, p.SupportLevel)
	}
	return w.Flush()
}

func runSubscribe(cmd *cobra.Command, args []string) error {
	userID, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil || userID == 0 {
		return fmt.Errorf("invalid user id %q", args[0])
	}

	db, err := connect()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if _, err := repositories.NewUserRepository(db).GetUserByID(ctx, uint(userID)); err != nil {
		return err
	}

	subscriptions := repositories.NewSubscriptionRepository(db)
	plan, err := subscriptions.GetPlanByName(ctx, strings.ToUpper(args[1]))
	if err != nil {
		return err
	}

	sub, err := subscriptions.Subscribe(ctx, uint(userID), plan, time.Now().UTC())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "user %d is on %s until %s\n", userID, plan.Name, sub.EndDate.Format("2006-01-02"))
	return nil
}

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Mint an API bearer token for a user",
	Long: `Token signs a JWT with JWT_SECRET_KEY for an existing user. The token
carries the user's id and gender and is accepted by the API's Authorization
header as "Bearer <token>".`,
	Args: cobra.ExactArgs(1),
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}

func runToken(cmd *cobra.Command, args []string) error {
	userID, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil || userID == 0 {
		return fmt.Errorf("invalid user id %q", args[0])
	}
	if tokenTTL <= 0 {
		return fmt.Errorf("--ttl must be positive")
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := connect()
	if err != nil {
		return err
	}

	user, err := repositories.NewUserRepository(db).GetUserByID(cmd.Context(), uint(userID))
	if err != nil {
		return err
	}

	token, err := security.GenerateJWT(user.ID, user.Gender, cfg.JWTSecret, tokenTTL)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
