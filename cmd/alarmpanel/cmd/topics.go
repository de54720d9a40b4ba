package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-alarm/internal/router"
	"github.com/nerrad567/gray-logic-alarm/internal/topics"
)

func newTopicsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "Print the MQTT topics the panel subscribes and publishes to.",
		Long: `Prints the inbound subscriptions in the order they are made, followed by
the outbound state and event topics. Built-in defaults are used when the
configuration file does not exist.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath, !cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}

			reg, err := topics.New(cfg.Alarm)
			if err != nil {
				return fmt.Errorf("building topic registry: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DIRECTION\tTOPIC\tQOS")
			for _, s := range router.BuildSubscriptions(reg) {
				fmt.Fprintf(w, "subscribe\t%s\t%d\n", s.Topic, s.QoS)
			}
			fmt.Fprintf(w, "publish\t%s\t%d\n", reg.State(), router.QoS)
			fmt.Fprintf(w, "publish\t%s\t%d\n", reg.Event(), router.QoS)
			return w.Flush()
		},
	}
}
