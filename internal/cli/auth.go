// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package cli

import (
	"bufio"
	"io"
	"strings"

	"github.com/fugitivexyz/jira-bug-mointor/model"
	"github.com/mattermost/mattermost-server/v6/shared/mlog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (a *app) newLoginCmd() *cobra.Command {
	var (
		credentials model.Credentials
		skipVerify  bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Verify and store Jira credentials",
		Long: "login checks the credentials against Jira through the relay and stores them\n" +
			"encrypted with the credential key. The API token is read from stdin when\n" +
			"--token is not given.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if credentials.APIToken == "" && credentials.AccessToken == "" {
				printf(cmd.ErrOrStderr(), "API token: ")
				token, err := readLine(cmd.InOrStdin())
				if err != nil {
					return errors.Wrap(err, "unable to read the API token")
				}
				credentials.APIToken = token
			}
			credentials.InstanceURL = credentials.BaseURL()
			if err := credentials.Validate(); err != nil {
				return err
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}

			if !skipVerify {
				if err := a.relayClient(&credentials).TestConnection(cmd.Context()); err != nil {
					return err
				}
			}
			if err := s.Save(&credentials); err != nil {
				return err
			}

			mlog.Info("Saved credentials", mlog.String("instance", credentials.InstanceURL))
			printf(cmd.OutOrStdout(), "Logged in to %s as %s\n", credentials.InstanceURL, identity(&credentials))
			return nil
		},
	}

	cmd.Flags().StringVar(&credentials.InstanceURL, "instance", "", "Jira Cloud URL, e.g. https://acme.atlassian.net")
	cmd.Flags().StringVar(&credentials.Email, "email", "", "account email")
	cmd.Flags().StringVar(&credentials.APIToken, "token", "", "API token")
	cmd.Flags().StringVar(&credentials.AccessToken, "access-token", "", "OAuth access token used instead of email and API token")
	cmd.Flags().BoolVar(&skipVerify, "skip-verify", false, "store the credentials without testing them")
	_ = cmd.MarkFlagRequired("instance")
	return cmd
}

func (a *app) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			if err := s.Clear(); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Logged out\n")
			return nil
		},
	}
}

func (a *app) newWhoAmICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated Jira user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.loggedInClient()
			if err != nil {
				return err
			}
			user, err := client.WhoAmI(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), a.v.GetString(keyOutput), user, func(w io.Writer) error {
				printf(w, "%s\t%s\n", user.DisplayName, user.Email)
				return nil
			})
		},
	}
}

func identity(c *model.Credentials) string {
	if c.Email != "" {
		return c.Email
	}
	return "access token"
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
