package cmd

import (
	"adminctl/app/dto"
	"adminctl/app/service/auth"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/samber/do"
	"github.com/spf13/cobra"
)

const passwordEnvName = "ADMINCTL_PASSWORD"

var (
	emailFlag       string
	passwordFlag    string
	nameFlag        string
	tokenFlag       string
	currentPassword string
	confirmPassword string
	profilePhone    string
	profileBio      string
	profileTimezone string
	profileLanguage string
	verboseWhoami   bool
)

var Login = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session",
	RunE: run(func(cmd *cobra.Command, _ []string, a *app) error {
		svc := do.MustInvoke[*auth.Service](a.di)

		usr, err := svc.Login(a.ctx, emailFlag, passwordOrEnv())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", usr.Name, usr.Email)
		if roles := usr.RoleNames(); len(roles) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Roles: %s\n", strings.Join(roles, ", "))
		}

		return nil
	}),
}

var Logout = &cobra.Command{
	Use:   "logout",
	Short: "End the session",
	RunE: run(func(cmd *cobra.Command, _ []string, a *app) error {
		if err := do.MustInvoke[*auth.Service](a.di).Logout(a.ctx); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")

		return nil
	}),
}

var Whoami = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed in user and granted permissions",
	RunE: authed(func(cmd *cobra.Command, _ []string, a *app) error {
		usr := a.session.UserInfo()
		if usr == nil {
			return signInRequired()
		}

		return printUser(cmd.OutOrStdout(), usr, verboseWhoami)
	}),
}

var SignUp = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE: run(func(cmd *cobra.Command, _ []string, a *app) error {
		password := passwordOrEnv()
		confirmation := confirmPassword
		if confirmation == "" {
			confirmation = password
		}

		err := do.MustInvoke[*auth.Service](a.di).Register(a.ctx, &dto.RegisterRequest{
			Name:                 nameFlag,
			Email:                emailFlag,
			Password:             password,
			PasswordConfirmation: confirmation,
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Account created, check your email for the verification code")

		return nil
	}),
}

var ForgotPassword = &cobra.Command{
	Use:   "forgot-password",
	Short: "Request a password reset token",
	RunE: run(func(cmd *cobra.Command, _ []string, a *app) error {
		err := do.MustInvoke[*auth.Service](a.di).ForgotPassword(a.ctx, &dto.ForgotPasswordRequest{
			Email: emailFlag,
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "If the account exists a reset token was sent")

		return nil
	}),
}

var ResetPassword = &cobra.Command{
	Use:   "reset-password",
	Short: "Set a new password with a reset token",
	RunE: run(func(cmd *cobra.Command, _ []string, a *app) error {
		password := passwordOrEnv()
		confirmation := confirmPassword
		if confirmation == "" {
			confirmation = password
		}

		err := do.MustInvoke[*auth.Service](a.di).ResetPassword(a.ctx, &dto.ResetPasswordRequest{
			Email:                emailFlag,
			Token:                tokenFlag,
			Password:             password,
			PasswordConfirmation: confirmation,
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Password updated, sign in with the new password")

		return nil
	}),
}

var VerifyEmail = &cobra.Command{
	Use:   "verify-email",
	Short: "Confirm an email address",
	RunE: run(func(cmd *cobra.Command, _ []string, a *app) error {
		err := do.MustInvoke[*auth.Service](a.di).VerifyEmail(a.ctx, &dto.VerifyEmailRequest{
			Email: emailFlag,
			Token: tokenFlag,
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Email verified")

		return nil
	}),
}

var ResendVerification = &cobra.Command{
	Use:   "resend-verification",
	Short: "Send the verification code again",
	RunE: run(func(cmd *cobra.Command, _ []string, a *app) error {
		err := do.MustInvoke[*auth.Service](a.di).ResendVerification(a.ctx, &dto.ResendVerificationRequest{
			Email: emailFlag,
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Verification code sent")

		return nil
	}),
}

var ChangePassword = &cobra.Command{
	Use:   "change-password",
	Short: "Change the password of the signed in user",
	RunE: authed(func(cmd *cobra.Command, _ []string, a *app) error {
		password := passwordOrEnv()
		confirmation := confirmPassword
		if confirmation == "" {
			confirmation = password
		}

		err := do.MustInvoke[*auth.Service](a.di).ChangePassword(a.ctx, &dto.ChangePasswordRequest{
			CurrentPassword:      currentPassword,
			Password:             password,
			PasswordConfirmation: confirmation,
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Password changed")

		return nil
	}),
}

var Profile = &cobra.Command{
	Use:   "profile",
	Short: "Update the profile of the signed in user",
	RunE: authed(func(cmd *cobra.Command, _ []string, a *app) error {
		current := a.session.UserInfo()
		if current == nil {
			return signInRequired()
		}

		form := &dto.ProfileForm{
			Name:     current.Name,
			Email:    current.Email,
			Phone:    current.Phone,
			Bio:      current.Bio,
			Timezone: current.Timezone,
			Language: current.Language,
		}

		flags := cmd.Flags()
		if flags.Changed("name") {
			form.Name = nameFlag
		}
		if flags.Changed("email") {
			form.Email = emailFlag
		}
		if flags.Changed("phone") {
			form.Phone = profilePhone
		}
		if flags.Changed("bio") {
			form.Bio = profileBio
		}
		if flags.Changed("timezone") {
			form.Timezone = profileTimezone
		}
		if flags.Changed("language") {
			form.Language = profileLanguage
		}

		usr, err := do.MustInvoke[*auth.Service](a.di).UpdateProfile(a.ctx, form)
		if err != nil {
			return err
		}

		return printUser(cmd.OutOrStdout(), usr, false)
	}),
}

func init() {
	Login.Flags().StringVarP(&emailFlag, "email", "e", "", "Account email")
	Login.Flags().StringVarP(&passwordFlag, "password", "p", "", "Password, defaults to $"+passwordEnvName)
	_ = Login.MarkFlagRequired("email")

	Whoami.Flags().BoolVarP(&verboseWhoami, "verbose", "v", false, "Show the full permission list")

	SignUp.Flags().StringVarP(&nameFlag, "name", "n", "", "Full name")
	SignUp.Flags().StringVarP(&emailFlag, "email", "e", "", "Account email")
	SignUp.Flags().StringVarP(&passwordFlag, "password", "p", "", "Password, defaults to $"+passwordEnvName)
	SignUp.Flags().StringVar(&confirmPassword, "password-confirmation", "", "Password confirmation, defaults to the password")

	ForgotPassword.Flags().StringVarP(&emailFlag, "email", "e", "", "Account email")

	ResetPassword.Flags().StringVarP(&emailFlag, "email", "e", "", "Account email")
	ResetPassword.Flags().StringVarP(&tokenFlag, "token", "t", "", "Reset token from the email")
	ResetPassword.Flags().StringVarP(&passwordFlag, "password", "p", "", "New password, defaults to $"+passwordEnvName)
	ResetPassword.Flags().StringVar(&confirmPassword, "password-confirmation", "", "Password confirmation, defaults to the password")

	VerifyEmail.Flags().StringVarP(&emailFlag, "email", "e", "", "Account email")
	VerifyEmail.Flags().StringVarP(&tokenFlag, "token", "t", "", "Verification code")

	ResendVerification.Flags().StringVarP(&emailFlag, "email", "e", "", "Account email")

	ChangePassword.Flags().StringVar(&currentPassword, "current", "", "Current password")
	ChangePassword.Flags().StringVarP(&passwordFlag, "password", "p", "", "New password, defaults to $"+passwordEnvName)
	ChangePassword.Flags().StringVar(&confirmPassword, "password-confirmation", "", "Password confirmation, defaults to the password")

	Profile.Flags().StringVarP(&nameFlag, "name", "n", "", "Full name")
	Profile.Flags().StringVarP(&emailFlag, "email", "e", "", "Email")
	Profile.Flags().StringVar(&profilePhone, "phone", "", "Phone number")
	Profile.Flags().StringVar(&profileBio, "bio", "", "Short bio")
	Profile.Flags().StringVar(&profileTimezone, "timezone", "", "Timezone, e.g. Europe/Berlin")
	Profile.Flags().StringVar(&profileLanguage, "language", "", "Language code")
}

func passwordOrEnv() string {
	if passwordFlag != "" {
		return passwordFlag
	}

	return os.Getenv(passwordEnvName)
}

func printUser(out io.Writer, usr *dto.User, allPermissions bool) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "ID\t%d\n", usr.ID)
	fmt.Fprintf(w, "Name\t%s\n", usr.Name)
	fmt.Fprintf(w, "Email\t%s\n", usr.Email)
	if usr.Phone != "" {
		fmt.Fprintf(w, "Phone\t%s\n", usr.Phone)
	}
	fmt.Fprintf(w, "Type\t%s\n", usr.UserType.Label())
	fmt.Fprintf(w, "Status\t%s\n", usr.Status.Label())
	fmt.Fprintf(w, "Roles\t%s\n", strings.Join(usr.RoleNames(), ", "))
	if usr.LastLoginAt != "" {
		fmt.Fprintf(w, "Last login\t%s\n", usr.LastLoginAt)
	}

	names := usr.PermissionNames()
	sort.Strings(names)
	if allPermissions {
		fmt.Fprintf(w, "Permissions\t%s\n", strings.Join(names, ", "))
	} else {
		fmt.Fprintf(w, "Permissions\t%d granted\n", len(names))
	}

	return w.Flush()
}

func formatSince(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "never"
	}

	return fmt.Sprintf("%s (%s ago)", t.Format(time.DateTime), now.Sub(t).Round(time.Second))
}
