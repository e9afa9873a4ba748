package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"pyblog-news-parser/internal/observability"
	"pyblog-news-parser/internal/storage"
)

const schemaSQL = `
IF OBJECT_ID(N'dbo.TblPyBlogPosts', N'U') IS NULL
BEGIN
	CREATE TABLE dbo.TblPyBlogPosts (
		[TitleKey]    CHAR(64)       NOT NULL PRIMARY KEY,
		[Title]       NVARCHAR(1000) NOT NULL,
		[DateLabel]   NVARCHAR(200)  NOT NULL,
		[PostDate]    DATE           NULL,
		[SequenceNum] INT            NOT NULL,
		[CheckSum]    CHAR(64)       NOT NULL,
		[ScrapedAt]   DATETIME2      NOT NULL
	);
END`

type Repository struct {
	db             *sql.DB
	commandTimeout time.Duration
	logger         *observability.Logger
}

func NewRepository(dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Тестируем соединение
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{
		db:             db,
		commandTimeout: commandTimeout,
		logger:         logger,
	}, nil
}

// EnsureSchema создаёт TblPyBlogPosts, если её нет
func (r *Repository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// UpsertPost сохраняет или обновляет запись по ключу заголовка
func (r *Repository) UpsertPost(ctx context.Context, row *storage.PostRow) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	// MERGE statement для MS SQL; $action говорит, была вставка или обновление
	query := `
		MERGE INTO dbo.TblPyBlogPosts AS target
		USING (SELECT @TitleKey AS TitleKey) AS source
		ON target.[TitleKey] = source.TitleKey
		WHEN MATCHED THEN
			UPDATE SET
				[Title] = @Title,
				[DateLabel] = @DateLabel,
				[PostDate] = @PostDate,
				[SequenceNum] = @SequenceNum,
				[CheckSum] = @CheckSum,
				[ScrapedAt] = @ScrapedAt
		WHEN NOT MATCHED THEN
			INSERT ([TitleKey], [Title], [DateLabel], [PostDate], [SequenceNum], [CheckSum], [ScrapedAt])
			VALUES (@TitleKey, @Title, @DateLabel, @PostDate, @SequenceNum, @CheckSum, @ScrapedAt)
		OUTPUT $action;
	`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return false, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.Error("Failed to close statement", "error", err.Error())
		}
	}()

	var postDate sql.NullTime
	if row.PostDate != nil {
		postDate = sql.NullTime{Time: *row.PostDate, Valid: true}
	}

	var action string
	err = stmt.QueryRowContext(ctx,
		sql.Named("TitleKey", row.TitleKey),
		sql.Named("Title", row.Title),
		sql.Named("DateLabel", row.DateLabel),
		sql.Named("PostDate", postDate),
		sql.Named("SequenceNum", row.SequenceNum),
		sql.Named("CheckSum", row.CheckSum),
		sql.Named("ScrapedAt", time.Now().UTC()),
	).Scan(&action)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("merge returned no action for %s", row.TitleKey)
		}
		return false, fmt.Errorf("failed to execute upsert: %w", err)
	}

	return action == "INSERT", nil
}

// CountPosts получает количество сохранённых записей
func (r *Repository) CountPosts(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dbo.TblPyBlogPosts`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to query database: %w", err)
	}

	return count, nil
}

// Close закрывает соединение с БД
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

var _ storage.Repository = (*Repository)(nil)
