package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validation"
)

var (
	loginEmail    string
	loginPassword string
	noBrowser     bool

	reg        validation.Registration
	regCountry string

	verifyEmail    string
	verifyOTP      string
	verifyName     string
	verifyPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

// loginGoogleCmd signs in through the browser
var loginGoogleCmd = &cobra.Command{
	Use:   "login-google",
	Short: "Sign in with a Google account through the browser",
	Long: `Opens the grocery API's Google sign-in page in the browser. Once the
API has finished the OAuth exchange it redirects back to a short-lived
listener on 127.0.0.1, which hands the session to this command.`,
	Args: cobra.NoArgs,
	RunE: runLoginGoogle,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account; a one-time code is mailed to finish it",
	Long: `Validates the sign-up form against the selected country, then asks the
grocery API to mail a one-time code. When run in a terminal the code is
prompted for straight away; otherwise finish with "storefront verify".

Example:
  storefront register --first-name Asha --last-name Rao --email asha@example.com \
    --country IN --address "12 MG Road, Bengaluru" --pin 560001 --contact 9876543210 --agree`,
	Args: cobra.NoArgs,
	RunE: runRegister,
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Finish registration with the mailed one-time code",
	Args:  cobra.NoArgs,
	RunE:  runVerify,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in customer",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prompted when omitted)")
	loginGoogleCmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Only print the sign-in URL")

	f := registerCmd.Flags()
	f.StringVar(&reg.FirstName, "first-name", "", "First name")
	f.StringVar(&reg.LastName, "last-name", "", "Last name")
	f.StringVar(&reg.Email, "email", "", "Email")
	f.StringVar(&reg.Password, "password", "", "Password (prompted when omitted)")
	f.StringVar(&reg.Phone, "contact", "", "Contact number")
	f.StringVar(&reg.Address, "address", "", "Street address")
	f.StringVar(&reg.PostalCode, "pin", "", "Postal code")
	f.StringVar(&regCountry, "country", "", "Country code, e.g. IN")
	f.BoolVar(&reg.AgreeToTerms, "agree", false, "Agree to the terms")

	verifyCmd.Flags().StringVar(&verifyEmail, "email", "", "Email used to register")
	verifyCmd.Flags().StringVar(&verifyOTP, "otp", "", "One-time code from the email")
	verifyCmd.Flags().StringVar(&verifyName, "name", "", "Full name used to register")
	verifyCmd.Flags().StringVar(&verifyPassword, "password", "", "Password used to register (prompted when omitted)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	in := bufio.NewReader(cmd.InOrStdin())
	email := loginEmail
	if email == "" {
		email = prompt(in, cmd.ErrOrStderr(), "Email: ")
	}
	password := loginPassword
	if password == "" {
		password = promptSecret(in, cmd.ErrOrStderr(), "Password: ")
	}
	if email == "" || password == "" {
		return errors.New("email and password are required")
	}

	return withApp(cmd.OutOrStdout(), func(ctx context.Context, a *app) error {
		u, err := a.auth.Login(ctx, email, password)
		if err != nil {
			return loginFailure(err)
		}
		fmt.Fprintf(a.out, "Welcome, %s!\n", displayName(u))
		return nil
	})
}

func runLoginGoogle(cmd *cobra.Command, args []string) error {
	return withApp(cmd.OutOrStdout(), func(ctx context.Context, a *app) error {
		ctx, cancel := context.WithTimeout(ctx, a.cfg.OAuthTimeout)
		defer cancel()

		open := func(url string) error {
			fmt.Fprintf(cmd.ErrOrStderr(), "Continue signing in at:\n  %s\n", url)
			if noBrowser {
				return nil
			}
			if err := openBrowser(url); err != nil {
				// the printed URL still works
				a.logger.Debug("browser launch failed", zap.Error(err))
			}
			return nil
		}

		u, err := a.auth.LoginGoogle(ctx, open)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return errors.New("google sign-in timed out")
			}
			return err
		}
		fmt.Fprintf(a.out, "Welcome, %s!\n", displayName(u))
		return nil
	})
}

func runRegister(cmd *cobra.Command, args []string) error {
	in := bufio.NewReader(cmd.InOrStdin())
	form := reg
	if form.Password == "" {
		form.Password = promptSecret(in, cmd.ErrOrStderr(), "Password: ")
		form.ConfirmPassword = promptSecret(in, cmd.ErrOrStderr(), "Confirm password: ")
	} else {
		form.ConfirmPassword = form.Password
	}

	return withApp(cmd.OutOrStdout(), func(ctx context.Context, a *app) error {
		c := a.countries.Lookup(ctx, regCountry)
		msg, err := a.auth.Register(ctx, form, c.Locale(), c.Name)
		if err != nil {
			var verr *validation.Error
			if errors.As(err, &verr) {
				printFieldErrors(cmd.ErrOrStderr(), verr.Fields)
			}
			return err
		}
		if msg == "" {
			msg = "A verification code was sent to " + form.Email
		}
		fmt.Fprintln(a.out, msg)

		if !isTerminal(cmd.InOrStdin()) {
			fmt.Fprintln(a.out, `Finish with: storefront verify --email `+form.Email+` --name "`+form.FullName()+`" --otp <code>`)
			return nil
		}
		otp := prompt(in, cmd.ErrOrStderr(), "Verification code: ")
		u, err := a.auth.VerifyEmail(ctx, clients.VerifyRequest{
			Email:    form.Email,
			OTP:      otp,
			Name:     form.FullName(),
			Password: form.Password,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Welcome, %s!\n", displayName(u))
		return nil
	})
}

func runVerify(cmd *cobra.Command, args []string) error {
	in := bufio.NewReader(cmd.InOrStdin())
	password := verifyPassword
	if password == "" {
		password = promptSecret(in, cmd.ErrOrStderr(), "Password: ")
	}
	if verifyEmail == "" || verifyOTP == "" {
		return errors.New("--email and --otp are required")
	}

	return withApp(cmd.OutOrStdout(), func(ctx context.Context, a *app) error {
		u, err := a.auth.VerifyEmail(ctx, clients.VerifyRequest{
			Email:    verifyEmail,
			OTP:      verifyOTP,
			Name:     verifyName,
			Password: password,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Welcome, %s!\n", displayName(u))
		return nil
	})
}

func runLogout(cmd *cobra.Command, args []string) error {
	return withApp(cmd.OutOrStdout(), func(ctx context.Context, a *app) error {
		if _, ok := a.auth.Restore(ctx); !ok {
			fmt.Fprintln(a.out, "Not signed in.")
			return nil
		}
		return a.auth.Logout(ctx)
	})
}

func runWhoami(cmd *cobra.Command, args []string) error {
	return withApp(cmd.OutOrStdout(), func(ctx context.Context, a *app) error {
		u, err := a.signedIn(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s <%s>\n", displayName(u), u.Email)
		fmt.Fprintf(a.out, "Customer ID: %s\n", u.ID)

		details, err := a.customers.Details(ctx, u.ID)
		if err != nil {
			a.logger.Debug("customer details unavailable", zap.Error(err))
			return nil
		}
		if details.Address != "" {
			fmt.Fprintf(a.out, "Address:     %s\n", details.Address)
		}
		if details.ContactNumber != "" {
			fmt.Fprintf(a.out, "Contact:     %s\n", details.ContactNumber)
		}
		return nil
	})
}

func loginFailure(err error) error {
	var apiErr *clients.APIError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusBadRequest) {
		return errors.New(apiErr.Message)
	}
	return err
}

func displayName(u auth.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

func printFieldErrors(w io.Writer, fields validation.FieldErrors) {
	for _, f := range fields.Fields() {
		fmt.Fprintf(w, "  %s: %s\n", f, errorStyle.Render(fields[f]))
	}
}

func prompt(in *bufio.Reader, out io.Writer, label string) string {
	fmt.Fprint(out, label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

// promptSecret reads without echo when stdin is a terminal.
func promptSecret(in *bufio.Reader, out io.Writer, label string) string {
	if !isTerminal(os.Stdin) || in.Buffered() > 0 {
		return prompt(in, out, label)
	}
	fmt.Fprint(out, label)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// openBrowser opens the specified URL in the default browser
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	return cmd.Start()
}
