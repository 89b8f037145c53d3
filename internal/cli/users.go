package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/decker502/magicword/pkg/config"
	"github.com/decker502/magicword/pkg/game"
)

// userView is the JSON shape of a player record.
type userView struct {
	ID          string            `json:"userID"`
	Name        string            `json:"userName"`
	Sex         string            `json:"sexo"`
	Age         int               `json:"edad"`
	Correct     []int             `json:"aciertos"`
	Errors      []int             `json:"errores"`
	LastSession time.Time         `json:"lastSession"`
	Levels      []game.LevelStats `json:"levels,omitempty"`
}

func toView(u game.UserRecord) userView {
	return userView{
		ID:          u.ID,
		Name:        u.Name,
		Sex:         u.Sex,
		Age:         u.Age,
		Correct:     u.Correct,
		Errors:      u.Errors,
		LastSession: u.LastSession,
	}
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage players",
}

func init() {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List players",
		Args:  cobra.NoArgs,
		RunE:  runUsersList,
	}

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a player with per-level accuracy",
		Args:  cobra.ExactArgs(1),
		RunE:  runUsersShow,
	}

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new player",
		Args:  cobra.NoArgs,
		RunE:  runUsersRegister,
	}
	registerCmd.Flags().String("id", "", "Player ID, digits only (required)")
	registerCmd.Flags().String("name", "", "Player name (required)")
	registerCmd.Flags().String("sex", "", "Masculino or Femenino (required)")
	registerCmd.Flags().Int("age", 0, "Age, 6 to 14 (required)")
	registerCmd.MarkFlagRequired("id")
	registerCmd.MarkFlagRequired("name")
	registerCmd.MarkFlagRequired("sex")
	registerCmd.MarkFlagRequired("age")

	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a player's ID, name, sex or age",
		Args:  cobra.ExactArgs(1),
		RunE:  runUsersUpdate,
	}
	updateCmd.Flags().String("id", "", "New player ID")
	updateCmd.Flags().String("name", "", "New name")
	updateCmd.Flags().String("sex", "", "New sex")
	updateCmd.Flags().Int("age", 0, "New age")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a player",
		Args:  cobra.ExactArgs(1),
		RunE:  runUsersDelete,
	}

	setStatsCmd := &cobra.Command{
		Use:   "set-stats <id>",
		Short: "Overwrite the correct/error counters of one level",
		Args:  cobra.ExactArgs(1),
		RunE:  runUsersSetStats,
	}
	setStatsCmd.Flags().IntP("level", "l", 0, "Level 1-7 (required)")
	setStatsCmd.Flags().Int("correct", 0, "Correct answers")
	setStatsCmd.Flags().Int("errors", 0, "Wrong answers")
	setStatsCmd.MarkFlagRequired("level")

	usersCmd.AddCommand(listCmd, showCmd, registerCmd, updateCmd, deleteCmd, setStatsCmd)
	RootCmd.AddCommand(usersCmd)
}

func runUsersList(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	users := s.List()
	out := cmd.OutOrStdout()
	if textFormat() {
		for _, u := range users {
			fmt.Fprintf(out, "%-12s %-24s %-10s %2d  %s\n", u.ID, u.Name, u.Sex, u.Age, u.LastSession.Format(time.RFC3339))
		}
		return nil
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, toView(u))
	}
	return writeJSON(out, views)
}

func runUsersShow(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	u, ok := s.FindByID(args[0])
	if !ok {
		return fmt.Errorf("show %s: %w", args[0], game.ErrUserNotFound)
	}

	report := game.BuildLevelReport(u)
	out := cmd.OutOrStdout()
	if textFormat() {
		fmt.Fprintf(out, "Usuario: %s (TI: %s)\nEdad: %d - Sexo: %s\n", u.Name, u.ID, u.Age, u.Sex)
		fmt.Fprint(out, game.FormatLevelReport(report))
		return nil
	}

	v := toView(u)
	v.Levels = report
	return writeJSON(out, v)
}

func runUsersRegister(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetString("id")
	name, _ := cmd.Flags().GetString("name")
	sex, _ := cmd.Flags().GetString("sex")
	age, _ := cmd.Flags().GetInt("age")

	s, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	u, err := s.Register(id, name, sex, age)
	if err != nil {
		return err
	}

	if textFormat() {
		fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s)\n", u.ID, u.Name)
		return nil
	}
	return writeJSON(cmd.OutOrStdout(), toView(u))
}

func runUsersUpdate(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	u, ok := s.FindByID(args[0])
	if !ok {
		return fmt.Errorf("update %s: %w", args[0], game.ErrUserNotFound)
	}

	// 只覆盖显式指定的字段
	flags := cmd.Flags()
	if flags.Changed("id") {
		u.ID, _ = flags.GetString("id")
	}
	if flags.Changed("name") {
		u.Name, _ = flags.GetString("name")
	}
	if flags.Changed("sex") {
		u.Sex, _ = flags.GetString("sex")
	}
	if flags.Changed("age") {
		u.Age, _ = flags.GetInt("age")
	}

	if err := s.Update(args[0], u); err != nil {
		return err
	}

	updated, _ := s.FindByID(u.ID)
	if textFormat() {
		fmt.Fprintf(cmd.OutOrStdout(), "updated %s (%s)\n", updated.ID, updated.Name)
		return nil
	}
	return writeJSON(cmd.OutOrStdout(), toView(updated))
}

func runUsersDelete(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	ok, err := s.Delete(args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("delete %s: %w", args[0], game.ErrUserNotFound)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"userID":%q}`+"\n", args[0])
	return nil
}

func runUsersSetStats(cmd *cobra.Command, args []string) error {
	level, _ := cmd.Flags().GetInt("level")
	correct, _ := cmd.Flags().GetInt("correct")
	errs, _ := cmd.Flags().GetInt("errors")

	if level < 1 || level > config.LevelCount {
		return fmt.Errorf("level %d out of range [1,%d]", level, config.LevelCount)
	}
	if correct < 0 || errs < 0 {
		return fmt.Errorf("counters must not be negative")
	}

	s, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	u, ok := s.FindByID(args[0])
	if !ok {
		return fmt.Errorf("set-stats %s: %w", args[0], game.ErrUserNotFound)
	}
	u.Correct[level-1] = correct
	u.Errors[level-1] = errs
	if err := s.UpdateStatistics(u.ID, u.Correct, u.Errors); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"userID":%q,"level":%d}`+"\n", u.ID, level)
	return nil
}
