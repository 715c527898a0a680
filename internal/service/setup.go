package service

import (
	"tg-aimod/internal/config"
	"tg-aimod/internal/logger"
	"tg-aimod/internal/models"
	"tg-aimod/internal/storage"
)

var (
	// Rules, Warnings, Logs, Allowlist, Notices and Groups are the
	// process-wide service singletons the handlers and engines consume.
	Rules     *RuleService
	Warnings  *WarningService
	Logs      *LogService
	Allowlist *AllowlistService
	Notices   *NoticeService
	Groups    *GroupService

	globalConfig *config.Config
)

// Initialize builds the services in their in-memory form
func Initialize(cfg *config.Config) {
	globalConfig = cfg

	Rules = &RuleService{mem: make(map[int64][]string)}
	Warnings = &WarningService{mem: make(map[warningKey]int)}
	Logs = &LogService{}
	Allowlist = &AllowlistService{manager: models.NewAllowlistManager()}
	Notices = &NoticeService{}
	Groups = &GroupService{manager: models.NewGroupInfoManager()}
}

// InitRepositories attaches database repositories when the DB is enabled
// and migrates their tables. Without a database everything stays in the
// in-memory fallbacks built by Initialize.
func InitRepositories() {
	if storage.DB == nil {
		return
	}

	ruleRepo := storage.NewRuleRepository(storage.DB)
	if err := ruleRepo.MigrateTable(); err != nil {
		logger.Warningf("Error migrating Rule table: %v", err)
	}
	Rules.repo = ruleRepo

	warningRepo := storage.NewWarningRepository(storage.DB)
	if err := warningRepo.MigrateTable(); err != nil {
		logger.Warningf("Error migrating Warning table: %v", err)
	}
	Warnings.repo = warningRepo

	logRepo := storage.NewLogRepository(storage.DB)
	if err := logRepo.MigrateTable(); err != nil {
		logger.Warningf("Error migrating audit tables: %v", err)
	}
	Logs.repo = logRepo

	allowlistRepo := storage.NewAllowlistRepository(storage.DB)
	if err := allowlistRepo.MigrateTable(); err != nil {
		logger.Warningf("Error migrating ApprovedUser table: %v", err)
	}
	Allowlist.repo = allowlistRepo
	Allowlist.loadFromDB()

	noticeRepo := storage.NewNoticeRepository(storage.DB)
	if err := noticeRepo.MigrateTable(); err != nil {
		logger.Warningf("Error migrating PendingNotice table: %v", err)
	}
	Notices.repo = noticeRepo

	groupRepo := storage.NewGroupRepository(storage.DB)
	if err := groupRepo.MigrateTable(); err != nil {
		logger.Warningf("Error migrating GroupInfo table: %v", err)
	}
	Groups.repo = groupRepo
	if err := storage.InitializeGroups(Groups.manager); err != nil {
		logger.Warningf("Error loading groups from database: %v", err)
	}

	userRepo := storage.NewUserRepository(storage.DB)
	if err := userRepo.MigrateTable(); err != nil {
		logger.Warningf("Error migrating UserInfo table: %v", err)
	}
	Groups.userRepo = userRepo
}
