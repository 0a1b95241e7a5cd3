package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/campusmeet/planner-cli/internal/model"
)

// seedFile is the YAML shape `planner-cli seed` loads.
type seedFile struct {
	Interests []seedInterest `yaml:"interests"`
	Users     []seedUser     `yaml:"users"`
}

type seedInterest struct {
	Name         string      `yaml:"name"`
	MinAttendees int         `yaml:"min_attendees"`
	Events       []seedEvent `yaml:"events"`
}

type seedEvent struct {
	Name        string  `yaml:"name"`
	Datetime    string  `yaml:"datetime"`
	Description string  `yaml:"description"`
	Cost        float64 `yaml:"cost"`
}

type seedUser struct {
	FirstName     string   `yaml:"first_name"`
	LastName      string   `yaml:"last_name"`
	Email         string   `yaml:"email"`
	Password      string   `yaml:"password"`
	TotalSeen     int      `yaml:"total_seen"`
	TotalAccepted int      `yaml:"total_accepted"`
	Interests     []string `yaml:"interests"`
}

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Load interests, users, and events from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read seed file %s", args[0])
		}
		var seed seedFile
		if err := yaml.Unmarshal(data, &seed); err != nil {
			return eris.Wrapf(err, "parse seed file %s", args[0])
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		iids := make(map[string]int64, len(seed.Interests))
		var eventsLoaded int
		for _, in := range seed.Interests {
			iid, err := st.EnsureInterest(ctx, in.Name, in.MinAttendees)
			if err != nil {
				return err
			}
			iids[in.Name] = iid

			rows := make([]model.EventRow, 0, len(in.Events))
			for _, ev := range in.Events {
				rows = append(rows, model.EventRow{
					Name:        ev.Name,
					Datetime:    ev.Datetime,
					Description: ev.Description,
					Cost:        ev.Cost,
				})
			}
			n, err := st.SeedEvents(ctx, iid, rows)
			if err != nil {
				return eris.Wrapf(err, "seed events for %s", in.Name)
			}
			eventsLoaded += n
		}

		for _, u := range seed.Users {
			uid, err := st.CreateUser(ctx, model.User{
				FirstName: u.FirstName,
				LastName:  u.LastName,
				Email:     u.Email,
				Password:  u.Password,
				UserStats: model.UserStats{
					TotalSeen:     u.TotalSeen,
					TotalAccepted: u.TotalAccepted,
				},
			})
			if err != nil {
				return err
			}

			links := make([]int64, 0, len(u.Interests))
			for _, name := range u.Interests {
				iid, ok := iids[name]
				if !ok {
					return eris.Errorf("user %s references unknown interest %q", u.Email, name)
				}
				links = append(links, iid)
			}
			if err := st.ReplaceUserInterests(ctx, uid, links); err != nil {
				return err
			}
		}

		zap.L().Info("seed complete",
			zap.Int("interests", len(seed.Interests)),
			zap.Int("users", len(seed.Users)),
			zap.Int("events", eventsLoaded),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
