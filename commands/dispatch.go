package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/opgaveflyt/opgaveflyt-dispatcher/handover"
	"github.com/opgaveflyt/opgaveflyt-dispatcher/logging"
	"github.com/opgaveflyt/opgaveflyt-dispatcher/store"
	"github.com/opgaveflyt/opgaveflyt-dispatcher/transfer"
	"github.com/opgaveflyt/opgaveflyt-dispatcher/workbook"
)

var DispatchCmd = Dispatch{
	command: defaults(),

	file:   "Delte dokumenter/Aktivitetsoverdragelse/Aktivitetsoverdragelse.xlsx",
	sheet:  workbook.Sheet,
	queue:  "NovaOpgaveFlyt",
	folder: "Delte dokumenter/Aktivitetsoverdragelse",
	report: "",
	dryrun: false,
}

// Dispatch downloads the hand-over workbook, queues one work item per row and
// replaces the remote workbook with an empty template.
type Dispatch struct {
	command
	file   string
	sheet  string
	queue  string
	folder string
	report string
	dryrun bool
}

// Queue is the work queue the hand-over batch is added to.
type Queue interface {
	BulkCreateQueueElements(ctx context.Context, queue string, references, data []string) error
}

// ProcessLog is the orchestrator process log.
type ProcessLog interface {
	LogInfo(ctx context.Context, message string) error
	LogError(ctx context.Context, message string) error
}

func (cmd *Dispatch) Name() string {
	return "dispatch"
}

func (cmd *Dispatch) Description() string {
	return "Queues the pending activity hand-overs from the SharePoint workbook and resets the workbook"
}

func (cmd *Dispatch) Usage() string {
	return "[--dryrun] [--file <path>] [--sheet <sheet>] [--queue <queue>]"
}

func (cmd *Dispatch) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] dispatch [options]\n", APP)
	fmt.Println()
	fmt.Println("  Downloads the hand-over workbook, adds a work item to the orchestrator queue for each row")
	fmt.Println("  and uploads an empty template in place of the workbook")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    opgaveflyt-dispatcher dispatch --key "$OPGAVEFLYT_KEY"`)
	fmt.Println(`    opgaveflyt-dispatcher --debug dispatch --dryrun --vault aws --aws-region eu-north-1`)
	fmt.Println()
}

func (cmd *Dispatch) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("dispatch")

	flagset.StringVar(&cmd.file, "file", cmd.file, "Document library path of the hand-over workbook")
	flagset.StringVar(&cmd.sheet, "sheet", cmd.sheet, "Worksheet holding the hand-over table")
	flagset.StringVar(&cmd.queue, "queue", cmd.queue, "Orchestrator work queue")
	flagset.StringVar(&cmd.folder, "upload-folder", cmd.folder, "Document library folder for the reset workbook. Defaults to the workbook folder")
	flagset.StringVar(&cmd.report, "report", cmd.report, "Writes the hand-overs to a TSV file")
	flagset.BoolVar(&cmd.dryrun, "dryrun", cmd.dryrun, "Logs the work items without queueing them or resetting the workbook")

	return flagset
}

func (cmd *Dispatch) Execute(ctx context.Context, options *Options) error {
	if strings.TrimSpace(cmd.file) == "" {
		return fmt.Errorf("--file is a required option")
	}

	if strings.TrimSpace(cmd.queue) == "" {
		return fmt.Errorf("--queue is a required option")
	}

	if err := cmd.mkdirs(); err != nil {
		return err
	}

	db, err := cmd.orchestrator()
	if err != nil {
		return err
	}

	defer db.Close()

	vault, err := cmd.secrets(ctx, db)
	if err != nil {
		return err
	}

	session, err := cmd.connect(ctx, vault)
	if err != nil {
		logError(ctx, db, err)
		return err
	}

	N, err := cmd.dispatch(ctx, session, db, cmd.synchronizer(db))
	if err != nil {
		logError(ctx, db, err)
		return err
	}

	if N > 0 && !cmd.dryrun {
		logInfo(ctx, db, fmt.Sprintf("queued %d hand-overs to %s", N, cmd.queue))
	}

	return nil
}

// dispatch runs a single pass and returns the number of work items created.
// Local copies of the workbook are removed on every path out.
func (cmd *Dispatch) dispatch(ctx context.Context, session store.Session, queue Queue, sync *transfer.Synchronizer) (int, error) {
	folder, err := cmd.uploadFolder()
	if err != nil {
		return 0, err
	}

	if !cmd.dryrun {
		if _, err := session.Folder(ctx, folder.Library, folder.Folder); err != nil {
			return 0, &transfer.UploadError{Folder: folder.Dir(), File: filepath.Base(cmd.file), Err: err}
		}
	}

	local, err := sync.Download(ctx, session, cmd.file)
	if err != nil {
		return 0, err
	}

	rows, err := func() ([]handover.Row, error) {
		defer transfer.Remove(local)

		return workbook.ExtractRows(local, cmd.sheet)
	}()

	if err != nil {
		return 0, err
	}

	items := handover.Transform(rows)
	if len(items) == 0 {
		logging.Infof("no hand-overs in %v", cmd.file)
		return 0, nil
	}

	batch, err := handover.NewBatch(items)
	if err != nil {
		return 0, err
	}

	if cmd.report != "" {
		if err := report(cmd.report, items); err != nil {
			return 0, err
		}
	}

	if cmd.dryrun {
		for i, ref := range batch.References {
			logging.Infof("dryrun %-3d %v  %v", i+1, ref, batch.Data[i])
		}

		logging.Infof("dryrun - %d hand-overs not queued", batch.Len())
		return 0, nil
	}

	if err := queue.BulkCreateQueueElements(ctx, cmd.queue, batch.References, batch.Data); err != nil {
		return 0, fmt.Errorf("error queueing %d hand-overs to %v (%w)", batch.Len(), cmd.queue, err)
	}

	logging.Infof("queued %d hand-overs to %v", batch.Len(), cmd.queue)

	if err := cmd.reset(ctx, session, sync, folder.Dir(), filepath.Base(local)); err != nil {
		return batch.Len(), err
	}

	return batch.Len(), nil
}

// uploadFolder returns the folder for the reset workbook, which defaults to the
// workbook's own folder. Both --file and --upload-folder are checked here,
// before anything is downloaded or queued.
func (cmd *Dispatch) uploadFolder() (store.RemotePath, error) {
	path, err := store.Resolve(cmd.file)
	if err != nil {
		return store.RemotePath{}, fmt.Errorf("invalid --file (%w)", err)
	}

	if strings.TrimSpace(cmd.folder) == "" {
		return store.RemotePath{Library: path.Library, Folder: path.Folder}, nil
	}

	folder, err := store.ResolveFolder(cmd.folder)
	if err != nil {
		return store.RemotePath{}, fmt.Errorf("invalid --upload-folder (%w)", err)
	}

	return folder, nil
}

func (cmd *Dispatch) reset(ctx context.Context, session store.Session, sync *transfer.Synchronizer, folder string, name string) error {
	template := filepath.Join(cmd.workdir, name)

	defer transfer.Remove(template)

	if err := workbook.WriteEmptyTemplate(template); err != nil {
		return fmt.Errorf("error writing empty template (%w)", err)
	}

	_, err := sync.Upload(ctx, session, folder, template)

	return err
}

func report(file string, items []handover.WorkItem) error {
	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".report-*.tsv")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := handover.WriteTSV(tmp, items); err != nil {
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), file); err != nil {
		return err
	}

	logging.Infof("wrote hand-over report to %v", file)

	return nil
}

func logInfo(ctx context.Context, plog ProcessLog, message string) {
	if err := plog.LogInfo(ctx, message); err != nil {
		logging.Warnf("unable to write process log (%v)", err)
	}
}

func logError(ctx context.Context, plog ProcessLog, err error) {
	if err := plog.LogError(ctx, err.Error()); err != nil {
		logging.Warnf("unable to write process log (%v)", err)
	}
}
