package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"counter_pos/internal/models"
	"counter_pos/internal/services"

	"github.com/spf13/cobra"
)

// withApp runs fn against a freshly loaded app and closes it afterwards.
func withApp(fn func(a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(a, cmd, args)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Prepare the configured store and create the default admin",
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			created, err := a.seedAdmin()
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "created admin %q\n", a.cfg.DefaultAdminUsername)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "users already present, nothing to seed")
			}
			return nil
		}),
	}
}

func menuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Print the menu",
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ITEM\tPRICE")
			for _, item := range a.menu.ListItems() {
				fmt.Fprintf(w, "%s\t$%d\n", item.Name, item.Price)
			}
			return w.Flush()
		}),
	}
}

// operator holds the staff credentials a subcommand acts under.
type operator struct {
	username string
	password string
}

func (o *operator) bindFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&o.username, "as", "", "Username performing the command")
	cmd.PersistentFlags().StringVar(&o.password, "password", "", "Password for --as")
}

// login authenticates the operator against the directory.
func (o *operator) login(a *app) (*services.Session, error) {
	user, err := a.directory.Authenticate(o.username, o.password)
	if err != nil {
		return nil, err
	}
	return services.NewSession("cli", user), nil
}

func (o *operator) loginAdmin(a *app) (*services.Session, error) {
	s, err := o.login(a)
	if err != nil {
		return nil, err
	}
	if err := s.RequireAdmin(); err != nil {
		return nil, err
	}
	return s, nil
}

func userCmd() *cobra.Command {
	var op operator

	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage staff accounts (Admin only)",
	}
	op.bindFlags(cmd)

	var permission string
	add := &cobra.Command{
		Use:   "add USERNAME PASSWORD",
		Short: "Add a user",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			s, err := op.loginAdmin(a)
			if err != nil {
				return err
			}
			p, err := models.ParsePermission(permission)
			if err != nil {
				return err
			}
			if err := s.AddUser(a.directory, args[0], args[1], p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", args[0], p)
			return nil
		}),
	}
	add.Flags().StringVar(&permission, "permission", string(models.Waiter), "Admin or Waiter")

	list := &cobra.Command{
		Use:   "list",
		Short: "List users with masked passwords",
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			if _, err := op.loginAdmin(a); err != nil {
				return err
			}
			return printUsers(cmd.OutOrStdout(), a.directory.ListUsers())
		}),
	}

	del := &cobra.Command{
		Use:   "delete USERNAME",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			s, err := op.loginAdmin(a)
			if err != nil {
				return err
			}
			if err := s.DeleteUser(a.directory, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		}),
	}

	cmd.AddCommand(add, list, del)
	return cmd
}

func printUsers(out io.Writer, users []models.User) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "USERNAME\tPASSWORD\tPERMISSION")
	for _, u := range users {
		r := u.Redacted()
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Username, r.Password, r.Permission)
	}
	return w.Flush()
}

func ordersCmd() *cobra.Command {
	var op operator

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect and update the order history",
	}
	op.bindFlags(cmd)

	var newest bool
	var staff string
	list := &cobra.Command{
		Use:   "list",
		Short: "List orders",
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			if _, err := op.login(a); err != nil {
				return err
			}
			orders := a.ledger.ListOrders()
			if staff != "" {
				orders = a.ledger.OrdersByStaff(staff)
			}
			if newest {
				for i, j := 0, len(orders)-1; i < j; i, j = i+1, j-1 {
					orders[i], orders[j] = orders[j], orders[i]
				}
			}
			if err := printOrders(cmd.OutOrStdout(), orders); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\npaid $%d, outstanding $%d\n", a.ledger.TotalRevenue(), a.ledger.OutstandingTotal())
			return nil
		}),
	}
	list.Flags().BoolVar(&newest, "newest", false, "Show the newest order first")
	list.Flags().StringVar(&staff, "staff", "", "Only orders taken by this user")

	cmd.AddCommand(
		list,
		orderActionCmd(&op, "paid", "Mark an order paid", func(l services.OrderLedger, n int) error { return l.MarkPaid(n) }),
		orderActionCmd(&op, "unpaid", "Mark an order unpaid", func(l services.OrderLedger, n int) error { return l.MarkUnpaid(n) }),
		orderActionCmd(&op, "cancel", "Cancel an unpaid order", func(l services.OrderLedger, n int) error { return l.Cancel(n) }),
	)
	return cmd
}

func orderActionCmd(op *operator, use, short string, action func(services.OrderLedger, int) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ORDER_NUMBER",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid order number %q", args[0])
			}
			s, err := op.login(a)
			if err != nil {
				return err
			}
			if err := action(a.ledger, n); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "order %d: %s by %s\n", n, use, s.User.Username)
			return nil
		}),
	}
}

func printOrders(out io.Writer, orders []models.Order) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tDATE\tSTAFF\tTOTAL\tSTATUS\tITEMS")
	for _, o := range orders {
		items := ""
		for i, line := range o.Items {
			if i > 0 {
				items += ", "
			}
			items += fmt.Sprintf("%dx %s", line.Count, line.Name)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t$%d\t%s\t%s\n", o.OrderNumber, o.CreatedAt, o.Staff, o.Total, o.Status(), items)
	}
	return w.Flush()
}
