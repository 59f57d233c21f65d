package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/yuanying/linkpub/internal/auth"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	add := &cobra.Command{
		Use:   "add USERNAME",
		Short: "Create an account (reads the password from stdin unless --password is set)",
		Args:  cobra.ExactArgs(1),
		RunE:  runUserAdd,
	}
	add.Flags().String("password", "", "Password for the new account")

	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE:  runUserList,
	}

	cmd.AddCommand(add, list)
	return cmd
}

// readPassword returns the --password flag or the first line of r.
func readPassword(cmd *cobra.Command, r io.Reader) (string, error) {
	if pw, _ := cmd.Flags().GetString("password"); pw != "" {
		return pw, nil
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return "", errors.New("password is required (pipe it on stdin or use --password)")
	}
	return pw, nil
}

func openUsers(cmd *cobra.Command) (*auth.Store, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return auth.NewStore(cfg.UsersFile(), logger)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	if err := auth.ValidateUsername(args[0]); err != nil {
		return err
	}
	password, err := readPassword(cmd, cmd.InOrStdin())
	if err != nil {
		return err
	}
	users, err := openUsers(cmd)
	if err != nil {
		return err
	}
	u, err := users.Register(args[0], password)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created user %s\n", u.Username)
	return nil
}

func runUserList(cmd *cobra.Command, _ []string) error {
	users, err := openUsers(cmd)
	if err != nil {
		return err
	}
	list, err := users.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No users")
		return nil
	}
	rows := make([][]string, 0, len(list))
	for _, u := range list {
		rows = append(rows, []string{u.Username, humanize.Time(u.CreatedAt)})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"User", "Created"}, rows, nil))
	return nil
}
