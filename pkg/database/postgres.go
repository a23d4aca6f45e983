package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ventrath/gantry/pkg/database/changes"
	"github.com/ventrath/gantry/pkg/errors"
	"github.com/ventrath/gantry/pkg/structs"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a gantry database implementation that uses postgres.
type Postgres struct {
	opts *Options
	pool *pgxpool.Pool
}

// NewPostgres returns a new Postgres database connection.
func NewPostgres(opts *Options) (*Postgres, error) {
	opts.SetDefaults()
	opts.URL = substituteCredentials(opts)
	pool, err := pgxpool.New(context.Background(), opts.URL)
	return &Postgres{pool: pool, opts: opts}, err
}

// Close shuts down the database connection.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// InsertRun inserts a run, it's jobs & steps into the database in a single transaction
func (p *Postgres) InsertRun(r *structs.Run, js []*structs.Job, ss []*structs.Step) error {
	// before we open a transaction, build all the SQL

	// run
	rstr, rargs := toRunSqlArgs(1, r) // the sql lib starts at 1
	rstr = fmt.Sprintf(`INSERT INTO %s (pipeline, event, id, status, etag, created_at, updated_at) VALUES %s;`, string(structs.KindRun), rstr)

	// jobs
	jstrs, jargs := []string{}, []interface{}{}
	for _, j := range js {
		s, a := toJobSqlArgs(len(jargs)+1, j)
		jstrs = append(jstrs, s)
		jargs = append(jargs, a...)
	}
	jstr := strings.Join(jstrs, ",") // join so its (),(),() etc
	jstr = fmt.Sprintf(`INSERT INTO %s (key, name, runs_on, needs, params, env, uploads, downloads, paused_at, retries, id, status, etag, run_id, queue_task_id, message, created_at, updated_at) VALUES %s;`, string(structs.KindJob), jstr)

	// steps
	sstrs, sargs := []string{}, []interface{}{}
	for _, s := range ss {
		q, a := toStepSqlArgs(len(sargs)+1, s)
		sstrs = append(sstrs, q)
		sargs = append(sargs, a...)
	}
	sstr := strings.Join(sstrs, ",") // join so its (),(),() etc
	sstr = fmt.Sprintf(`INSERT INTO %s (name, command, env, workdir, id, status, etag, run_id, job_id, idx, exit_code, message, created_at, updated_at) VALUES %s;`, string(structs.KindStep), sstr)

	// ok, we're ready to go
	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, rstr, rargs...)
	if err != nil {
		tx.Rollback(ctx)
		return err
	}

	_, err = tx.Exec(ctx, jstr, jargs...)
	if err != nil {
		tx.Rollback(ctx)
		return err
	}

	_, err = tx.Exec(ctx, sstr, sargs...)
	if err != nil {
		tx.Rollback(ctx)
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		tx.Rollback(ctx)
	}
	return err
}

// InsertArtifacts inserts a set of artifacts into the database in a single transaction.
// Each (run_id, name) pair may be written at most once; the unique index makes a second
// write fail rather than overwrite.
func (p *Postgres) InsertArtifacts(in []*structs.Artifact) error {
	astrs, aargs := []string{}, []interface{}{}
	for _, a := range in {
		s, ar := toArtifactSqlArgs(len(aargs)+1, a)
		astrs = append(astrs, s)
		aargs = append(aargs, ar...)
	}
	astr := strings.Join(astrs, ",") // join so its (),(),() etc
	astr = fmt.Sprintf(`INSERT INTO %s (id, name, run_id, job_id, size, created_at) VALUES %s;`, string(structs.KindArtifact), astr)

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	// we have a FK artifact.job_id -> job.id so we can let the DB ensure the job exists
	_, err = conn.Exec(ctx, astr, aargs...)
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return fmt.Errorf("%w %v", errors.ErrArtifactExists, err)
	}
	return err
}

// SetJobsPaused sets the paused state of the given jobs
func (p *Postgres) SetJobsPaused(at int64, newTag string, ids []*structs.ObjectRef) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	qstr, args := toSqlTags(4, ids)
	qstr = fmt.Sprintf(`UPDATE %s SET paused_at=$1, etag=$2, updated_at=$3 WHERE %s;`, string(structs.KindJob), qstr)
	args = append([]interface{}{at, newTag, timeNow()}, args...)

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	info, err := conn.Exec(ctx, qstr, args...)
	if err == nil {
		return info.RowsAffected(), nil
	}
	return 0, err
}

// SetRunsStatus sets the status of the given runs
func (p *Postgres) SetRunsStatus(status structs.Status, newTag string, ids []*structs.ObjectRef, msg ...string) (int64, error) {
	return p.setStatus(string(structs.KindRun), status, newTag, ids, msg...)
}

// SetJobsStatus sets the status of the given jobs
func (p *Postgres) SetJobsStatus(status structs.Status, newTag string, ids []*structs.ObjectRef, msg ...string) (int64, error) {
	return p.setStatus(string(structs.KindJob), status, newTag, ids, msg...)
}

// SetStepsStatus sets the status of the given steps
func (p *Postgres) SetStepsStatus(status structs.Status, newTag string, ids []*structs.ObjectRef, msg ...string) (int64, error) {
	return p.setStatus(string(structs.KindStep), status, newTag, ids, msg...)
}

// SetJobQueueID sets the queue id & status of the given job
func (p *Postgres) SetJobQueueID(jobID, etag, newEtag, queueTaskID string, state structs.Status) error {
	qstr := fmt.Sprintf(`UPDATE %s SET queue_task_id=$1, etag=$2, updated_at=$3, status=$4 WHERE id=$5 AND etag=$6;`, string(structs.KindJob))
	args := []interface{}{queueTaskID, newEtag, timeNow(), state, jobID, etag}

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	info, err := conn.Exec(ctx, qstr, args...)
	if err != nil {
		return err
	}
	if info.RowsAffected() == 0 {
		return errors.ErrETagMismatch
	}
	return nil
}

// SetStepResult sets the exit code, message & status of the given step
func (p *Postgres) SetStepResult(stepID, etag, newEtag string, status structs.Status, exitCode int64, msg string) error {
	qstr := fmt.Sprintf(`UPDATE %s SET exit_code=$1, message=$2, etag=$3, updated_at=$4, status=$5 WHERE id=$6 AND etag=$7;`, string(structs.KindStep))
	args := []interface{}{exitCode, msg, newEtag, timeNow(), status, stepID, etag}

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	info, err := conn.Exec(ctx, qstr, args...)
	if err != nil {
		return err
	}
	if info.RowsAffected() == 0 {
		return errors.ErrETagMismatch
	}
	return nil
}

// Runs returns runs matching the given query
func (p *Postgres) Runs(q *structs.Query) ([]*structs.Run, error) {
	where, args := toSqlQuery(map[string][]string{
		"id":     q.RunIDs,
		"status": statusToStrings(q.Statuses),
	},
		q.UpdatedBefore, q.UpdatedAfter, q.CreatedBefore, q.CreatedAfter,
	)
	args = append(args, q.Limit, q.Offset)

	qstr := fmt.Sprintf(`SELECT pipeline, event, id, status, etag, created_at, updated_at FROM %s %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d;`,
		string(structs.KindRun), where, len(args)-1, len(args),
	)

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, qstr, args...)
	if err != nil {
		return nil, err
	}

	runs := []*structs.Run{}
	for rows.Next() {
		r := structs.Run{}
		err = rows.Scan(
			&r.Pipeline,
			&r.Event,
			&r.ID,
			&r.Status,
			&r.ETag,
			&r.CreatedAt,
			&r.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, &r)
	}

	return runs, nil
}

// Jobs returns jobs matching the given query
func (p *Postgres) Jobs(q *structs.Query) ([]*structs.Job, error) {
	where, args := toSqlQuery(map[string][]string{
		"run_id": q.RunIDs,
		"id":     q.JobIDs,
		"status": statusToStrings(q.Statuses),
	},
		q.UpdatedBefore, q.UpdatedAfter, q.CreatedBefore, q.CreatedAfter,
	)
	args = append(args, q.Limit, q.Offset)

	qstr := fmt.Sprintf(`SELECT key, name, runs_on, needs, params, env, uploads, downloads, paused_at, retries, id, status, etag, run_id, queue_task_id, message, created_at, updated_at FROM %s %s
	ORDER BY created_at DESC LIMIT $%d OFFSET $%d;`,
		string(structs.KindJob), where, len(args)-1, len(args),
	)

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, qstr, args...)
	if err != nil {
		return nil, err
	}

	jobs := []*structs.Job{}
	for rows.Next() {
		j := structs.Job{}
		err = rows.Scan(
			&j.Key,
			&j.Name,
			&j.RunsOn,
			&j.Needs,
			&j.Params,
			&j.Env,
			&j.Uploads,
			&j.Downloads,
			&j.PausedAt,
			&j.Retries,
			&j.ID,
			&j.Status,
			&j.ETag,
			&j.RunID,
			&j.QueueTaskID,
			&j.Message,
			&j.CreatedAt,
			&j.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, &j)
	}

	return jobs, nil
}

// Steps returns steps matching the given query
func (p *Postgres) Steps(q *structs.Query) ([]*structs.Step, error) {
	where, args := toSqlQuery(map[string][]string{
		"run_id": q.RunIDs,
		"job_id": q.JobIDs,
		"id":     q.StepIDs,
		"status": statusToStrings(q.Statuses),
	},
		q.UpdatedBefore, q.UpdatedAfter, q.CreatedBefore, q.CreatedAfter,
	)
	args = append(args, q.Limit, q.Offset)

	qstr := fmt.Sprintf(`SELECT name, command, env, workdir, id, status, etag, run_id, job_id, idx, exit_code, message, created_at, updated_at FROM %s %s
	ORDER BY created_at DESC, idx ASC LIMIT $%d OFFSET $%d;`,
		string(structs.KindStep), where, len(args)-1, len(args),
	)

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, qstr, args...)
	if err != nil {
		return nil, err
	}

	steps := []*structs.Step{}
	for rows.Next() {
		s := structs.Step{}
		err = rows.Scan(
			&s.Name,
			&s.Command,
			&s.Env,
			&s.Workdir,
			&s.ID,
			&s.Status,
			&s.ETag,
			&s.RunID,
			&s.JobID,
			&s.Index,
			&s.ExitCode,
			&s.Message,
			&s.CreatedAt,
			&s.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		steps = append(steps, &s)
	}

	return steps, nil
}

// Artifacts returns artifacts matching the given query
func (p *Postgres) Artifacts(q *structs.Query) ([]*structs.Artifact, error) {
	where, args := toSqlQuery(map[string][]string{
		"run_id": q.RunIDs,
		"job_id": q.JobIDs,
	},
		q.UpdatedBefore, q.UpdatedAfter, q.CreatedBefore, q.CreatedAfter,
	)
	args = append(args, q.Limit, q.Offset)

	qstr := fmt.Sprintf(`SELECT id, name, run_id, job_id, size, created_at FROM %s %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d;`,
		string(structs.KindArtifact), where, len(args)-1, len(args),
	)

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, qstr, args...)
	if err != nil {
		return nil, err
	}

	arts := []*structs.Artifact{}
	for rows.Next() {
		a := structs.Artifact{}
		err = rows.Scan(
			&a.ID,
			&a.Name,
			&a.RunID,
			&a.JobID,
			&a.Size,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		arts = append(arts, &a)
	}

	return arts, nil
}

// Changes returns a stream of changes to the database (see pkg/database/changes) this is implemented
// in pkg/database/postgres_change_stream.go
func (p *Postgres) Changes() (changes.Stream, error) {
	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	_, err = conn.Exec(ctx, "listen gantry_events")
	return &pgChangeStream{
		ctx:  ctx,
		conn: conn,
	}, err
}

// setStatus sets the status of the given table's rows, generic version of higher level funcs
func (p *Postgres) setStatus(table string, status structs.Status, newTag string, ids []*structs.ObjectRef, msg ...string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var qstr string
	var args []interface{}
	if len(msg) == 0 {
		qstr, args = toSqlTags(4, ids)
		qstr = fmt.Sprintf(`UPDATE %s SET status=$1, etag=$2, updated_at=$3 WHERE %s;`, table, qstr)
		args = append([]interface{}{status, newTag, timeNow()}, args...)
	} else {
		qstr, args = toSqlTags(5, ids)
		qstr = fmt.Sprintf(`UPDATE %s SET status=$1, etag=$2, updated_at=$3, message=$4 WHERE %s;`, table, qstr)
		args = append([]interface{}{status, newTag, timeNow(), strings.Join(msg, " ")}, args...)
	}

	ctx := context.Background()
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	info, err := conn.Exec(ctx, qstr, args...)
	if err == nil {
		return info.RowsAffected(), nil
	}
	return 0, err
}

// toSqlQuery converts query data into a SQL query string & args
func toSqlQuery(in map[string][]string, upB, upA, crB, crA int64) (string, []interface{}) {
	if in == nil {
		in = map[string][]string{}
	}
	and := []string{}
	args := []interface{}{}
	for k, v := range in {
		if len(v) == 0 {
			continue
		}
		s, a := toSqlIn(len(args)+1, k, v)
		and = append(and, s)
		args = append(args, a...)
	}
	if upB > 0 { // updated before
		args = append(args, upB)
		and = append(and, fmt.Sprintf("updated_at <= $%d", len(args)))
	}
	if upA > 0 { // updated after
		args = append(args, upA)
		and = append(and, fmt.Sprintf("updated_at >= $%d", len(args)))
	}
	if crB > 0 { // created before
		args = append(args, crB)
		and = append(and, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if crA > 0 { // created after
		args = append(args, crA)
		and = append(and, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if len(and) == 0 {
		return "", args
	}
	return fmt.Sprintf("WHERE %s", strings.Join(and, " AND ")), args
}

// toSqlIn converts a list of strings into a SQL IN clause
func toSqlIn(offset int, field string, args []string) (string, []interface{}) {
	if len(args) == 0 {
		return "", []interface{}{}
	}
	vals := []string{}
	ifargs := []interface{}{}
	for i, a := range args {
		vals = append(vals, fmt.Sprintf("$%d", i+offset))
		ifargs = append(ifargs, a)
	}
	return fmt.Sprintf("%s IN (%s)", field, strings.Join(vals, ", ")), ifargs
}

// toSqlTags converts a list of object refs into a SQL query string & args
func toSqlTags(offset int, ids []*structs.ObjectRef) (string, []interface{}) {
	vals := []string{}
	subs := []interface{}{}
	for _, id := range ids {
		vals = append(vals, fmt.Sprintf("(id=$%d AND etag=$%d)", offset+len(subs), offset+len(subs)+1))
		subs = append(subs, id.ID, id.ETag)
	}
	return strings.Join(vals, " OR "), subs
}

// toRunSqlArgs converts a run into a SQL query string & args (for an insert)
func toRunSqlArgs(offset int, r *structs.Run) (string, []interface{}) {
	vals := []string{}
	for i := offset; i < 7+offset; i++ {
		vals = append(vals, fmt.Sprintf("$%d", i))
	}
	if r.CreatedAt == 0 {
		r.CreatedAt = timeNow()
		r.UpdatedAt = r.CreatedAt
	}
	return fmt.Sprintf("(%s)", strings.Join(vals, ", ")), []interface{}{
		r.Pipeline,
		r.Event,
		r.ID,
		r.Status,
		r.ETag,
		r.CreatedAt,
		r.UpdatedAt,
	}
}

// toJobSqlArgs converts a job into a SQL query string & args (for an insert)
func toJobSqlArgs(offset int, j *structs.Job) (string, []interface{}) {
	vals := []string{}
	for i := offset; i < 18+offset; i++ {
		vals = append(vals, fmt.Sprintf("$%d", i))
	}
	if j.CreatedAt == 0 {
		j.CreatedAt = timeNow()
		j.UpdatedAt = j.CreatedAt
	}
	return fmt.Sprintf("(%s)", strings.Join(vals, ", ")), []interface{}{
		j.Key,
		j.Name,
		j.RunsOn,
		j.Needs,
		j.Params,
		j.Env,
		j.Uploads,
		j.Downloads,
		j.PausedAt,
		j.Retries,
		j.ID,
		j.Status,
		j.ETag,
		j.RunID,
		j.QueueTaskID,
		j.Message,
		j.CreatedAt,
		j.UpdatedAt,
	}
}

// toStepSqlArgs converts a step into a SQL query string & args (for an insert)
func toStepSqlArgs(offset int, s *structs.Step) (string, []interface{}) {
	vals := []string{}
	for i := offset; i < 14+offset; i++ {
		vals = append(vals, fmt.Sprintf("$%d", i))
	}
	if s.CreatedAt == 0 {
		s.CreatedAt = timeNow()
		s.UpdatedAt = s.CreatedAt
	}
	return fmt.Sprintf("(%s)", strings.Join(vals, ", ")), []interface{}{
		s.Name,
		s.Command,
		s.Env,
		s.Workdir,
		s.ID,
		s.Status,
		s.ETag,
		s.RunID,
		s.JobID,
		s.Index,
		s.ExitCode,
		s.Message,
		s.CreatedAt,
		s.UpdatedAt,
	}
}

// toArtifactSqlArgs converts an artifact into a SQL query string & args (for an insert)
func toArtifactSqlArgs(offset int, a *structs.Artifact) (string, []interface{}) {
	vals := []string{}
	for i := offset; i < 6+offset; i++ {
		vals = append(vals, fmt.Sprintf("$%d", i))
	}
	if a.CreatedAt == 0 {
		a.CreatedAt = timeNow()
	}
	return fmt.Sprintf("(%s)", strings.Join(vals, ", ")), []interface{}{
		a.ID,
		a.Name,
		a.RunID,
		a.JobID,
		a.Size,
		a.CreatedAt,
	}
}

// statusToStrings converts a list of statuses into a list of strings
func statusToStrings(in []structs.Status) []string {
	if len(in) == 0 {
		return nil
	}
	out := []string{}
	for _, s := range in {
		out = append(out, string(s))
	}
	return out
}

// timeNow returns the current time in unix seconds
func timeNow() int64 {
	return time.Now().Unix()
}
