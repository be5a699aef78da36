package cli

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/viant/attendly/attendance"
	"github.com/viant/attendly/backup"
	"github.com/viant/attendly/delivery"
	"github.com/viant/attendly/engine"
)

func (a *app) initStore(ctx context.Context, args []string) error {
	if err := expectArgs(args, 0, 0); err != nil {
		return err
	}
	kind, err := a.store.Init(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "engine: %s\n", kind)
	return err
}

func (a *app) students(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("students", flag.ContinueOnError)
	group := fs.Int64("group", 0, "only students of this group")
	rest, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := expectArgs(rest, 0, 0); err != nil {
		return err
	}
	var filter *int64
	if *group > 0 {
		filter = group
	}
	list, err := a.store.ListStudents(ctx, filter)
	if err != nil {
		return err
	}
	return a.printJSON(list)
}

func (a *app) groups(ctx context.Context, args []string) error {
	if err := expectArgs(args, 0, 0); err != nil {
		return err
	}
	list, err := a.store.ListGroups(ctx)
	if err != nil {
		return err
	}
	return a.printJSON(list)
}

func (a *app) addStudent(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-student", flag.ContinueOnError)
	group := fs.Int64("group", 0, "group id")
	fee := fs.Float64("fee", 0, "payment amount")
	rest, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := expectArgs(rest, 1, 1); err != nil {
		return err
	}
	var opts attendance.StudentOptions
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "group":
			opts.GroupID = group
		case "fee":
			opts.PaymentAmount = fee
		}
	})
	id, err := a.store.AddStudent(ctx, rest[0], opts)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, id)
	return err
}

func (a *app) updateStudent(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update-student", flag.ContinueOnError)
	name := fs.String("name", "", "new name")
	group := fs.Int64("group", 0, "new group id")
	noGroup := fs.Bool("no-group", false, "remove from group")
	fee := fs.Float64("fee", 0, "new payment amount")
	rest, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := expectArgs(rest, 1, 1); err != nil {
		return err
	}
	id, err := parseID(rest[0])
	if err != nil {
		return err
	}
	patch := attendance.StudentPatch{ClearGroup: *noGroup}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			patch.Name = name
		case "group":
			patch.GroupID = group
		case "fee":
			patch.PaymentAmount = fee
		}
	})
	return a.store.UpdateStudent(ctx, id, patch)
}

func (a *app) deleteStudent(ctx context.Context, args []string) error {
	if err := expectArgs(args, 1, 1); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return a.store.DeleteStudent(ctx, id)
}

func (a *app) addGroup(ctx context.Context, args []string) error {
	if err := expectArgs(args, 1, 1); err != nil {
		return err
	}
	id, err := a.store.AddGroup(ctx, args[0])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, id)
	return err
}

func (a *app) renameGroup(ctx context.Context, args []string) error {
	if err := expectArgs(args, 2, 2); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return a.store.UpdateGroup(ctx, id, args[1])
}

func (a *app) deleteGroup(ctx context.Context, args []string) error {
	if err := expectArgs(args, 1, 1); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return a.store.DeleteGroup(ctx, id)
}

func (a *app) mark(ctx context.Context, args []string) error {
	if err := expectArgs(args, 3, 3); err != nil {
		return err
	}
	id, err := parseID(args[1])
	if err != nil {
		return err
	}
	return a.store.UpsertAttendance(ctx, args[0], id, attendance.Status(args[2]))
}

func (a *app) attendanceForDate(ctx context.Context, args []string) error {
	if err := expectArgs(args, 0, 1); err != nil {
		return err
	}
	date := a.today()
	if len(args) == 1 {
		date = args[0]
	}
	list, err := a.store.GetAttendanceForDate(ctx, date)
	if err != nil {
		return err
	}
	return a.printJSON(list)
}

func (a *app) history(ctx context.Context, args []string) error {
	if err := expectArgs(args, 1, 1); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	list, err := a.store.GetStudentAttendanceHistory(ctx, id)
	if err != nil {
		return err
	}
	return a.printJSON(list)
}

func (a *app) finalize(ctx context.Context, args []string) error {
	if err := expectArgs(args, 0, 1); err != nil {
		return err
	}
	date := a.today()
	if len(args) == 1 {
		date = args[0]
	}
	added, err := a.store.FinalizeDay(ctx, date)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "%s: %d offday records added\n", date, added)
	return err
}

func (a *app) pay(ctx context.Context, args []string) error {
	if err := expectArgs(args, 2, 4); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("%w: invalid amount %q", ErrUsage, args[1])
	}
	date := a.today()
	if len(args) > 2 {
		date = args[2]
	}
	note := ""
	if len(args) > 3 {
		note = args[3]
	}
	paymentID, err := a.store.RecordPayment(ctx, id, amount, date, note)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, paymentID)
	return err
}

func (a *app) payments(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("payments", flag.ContinueOnError)
	student := fs.Int64("student", 0, "list one student's payments instead of one day's")
	last := fs.Bool("last", false, "with -student, only the most recent payment")
	rest, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if *student > 0 {
		if err := expectArgs(rest, 0, 0); err != nil {
			return err
		}
		if *last {
			p, err := a.store.GetLastPaymentForStudent(ctx, *student)
			if err != nil {
				return err
			}
			return a.printJSON(p)
		}
		list, err := a.store.GetStudentPayments(ctx, *student)
		if err != nil {
			return err
		}
		return a.printJSON(list)
	}
	if err := expectArgs(rest, 0, 1); err != nil {
		return err
	}
	date := a.today()
	if len(rest) == 1 {
		date = rest[0]
	}
	list, err := a.store.GetPaymentsForDate(ctx, date)
	if err != nil {
		return err
	}
	return a.printJSON(list)
}

func (a *app) stats(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	days := fs.Int("days", attendance.DefaultStatsWindowDays, "window length in days")
	rest, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := expectArgs(rest, 1, 1); err != nil {
		return err
	}
	if *days < 1 {
		return fmt.Errorf("%w: -days must be at least 1, got %d", ErrUsage, *days)
	}
	id, err := parseID(rest[0])
	if err != nil {
		return err
	}
	stats, err := a.store.GetGroupStats(ctx, id, *days)
	if err != nil {
		return err
	}
	return a.printJSON(stats)
}

func (a *app) export(ctx context.Context, args []string) error {
	if err := expectArgs(args, 0, 0); err != nil {
		return err
	}
	now := a.now()
	snap, err := backup.Export(ctx, a.store.Querier(), backup.WithClock(func() time.Time { return now }))
	if err != nil {
		return err
	}
	payload, err := backup.Encode(snap)
	if err != nil {
		return err
	}
	sink, err := delivery.NewSink(ctx, a.cfg.BackupTarget, a.cfg.S3())
	if err != nil {
		return err
	}
	location, err := sink.Deliver(ctx, backup.FileName(now), payload)
	if err != nil {
		return err
	}
	log.Printf("backup written to %s", location)
	_, err = fmt.Fprintln(a.out, location)
	return err
}

func (a *app) importBackup(ctx context.Context, args []string) error {
	if err := expectArgs(args, 1, 1); err != nil {
		return err
	}
	data, err := delivery.Fetcher{S3: a.cfg.S3()}.Fetch(ctx, args[0])
	if err != nil {
		return err
	}
	stats, err := backup.ImportJSON(ctx, a.store.Querier(), data)
	if err != nil {
		return err
	}
	log.Printf("backup imported from %s", args[0])
	return a.printJSON(stats)
}

func (a *app) query(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing sql", ErrUsage)
	}
	params := make([]any, len(args)-1)
	for i, arg := range args[1:] {
		params[i] = arg
	}
	rows, err := a.store.Querier().QueryRows(ctx, args[0], params...)
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []engine.Row{}
	}
	return a.printJSON(rows)
}
