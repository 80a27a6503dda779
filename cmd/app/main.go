package main

import (
	"ImageRecognitionSkill/internal/clients"
	"ImageRecognitionSkill/internal/config"
	"ImageRecognitionSkill/internal/scheduler"
	"ImageRecognitionSkill/internal/services"
	"ImageRecognitionSkill/internal/storage/mysql"
	"ImageRecognitionSkill/internal/storage/nas"
	"ImageRecognitionSkill/internal/web"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load("./configs", "config")
	if err != nil {
		log.Fatalf("錯誤：無法載入設定: %v", err)
	}
	log.Printf("資訊：應用程式 %s 設定載入成功。", cfg.AppName)

	runMigrations(cfg.Database)

	nasStorage, err := nas.NewFileSystemStorage(cfg.NAS)
	if err != nil {
		log.Fatalf("錯誤：初始化 NAS 儲存失敗: %v", err)
	}

	dbStore, err := mysql.NewMySQLStore(cfg.Database)
	if err != nil {
		log.Fatalf("錯誤：初始化 MySQL 資料庫連線失敗: %v", err)
	}
	defer dbStore.Close()

	annotator, closeAnnotator, err := clients.NewAnnotator(context.Background(), cfg)
	if err != nil {
		log.Fatalf("錯誤：%v", err)
	}
	defer closeAnnotator()

	skillSvc, err := services.NewSkillService(cfg, dbStore, nasStorage, annotator)
	if err != nil {
		log.Fatalf("錯誤：初始化標註服務失敗: %v", err)
	}

	if cfg.Scheduler.Enabled {
		log.Println("資訊：排程器已在設定檔中啟用，正在初始化...")
		appScheduler, err := scheduler.NewScheduler(skillSvc, cfg.Scheduler.ReprocessCronSpec)
		if err != nil {
			log.Fatalf("錯誤：初始化排程器失敗: %v", err)
		}
		appScheduler.Start()
		defer appScheduler.Stop()
	} else {
		log.Println("資訊：排程器已在設定檔中禁用。")
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           web.SetupRouter(dbStore, skillSvc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("資訊：HTTP 伺服器正在監聽 %s\n", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("錯誤：HTTP 伺服器監聽失敗: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("資訊：收到關閉訊號，正在關閉應用程式...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("錯誤：HTTP 伺服器優雅關閉失敗: %v", err)
	}
	log.Println("資訊：HTTP 伺服器已關閉。")
}

// runMigrations 套用 scripts/migrate/mysql 下的資料庫遷移
func runMigrations(dbCfg config.DatabaseConfig) {
	migrationPath := "file://scripts/migrate/mysql"
	dsn := fmt.Sprintf("mysql://%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&multiStatements=true",
		dbCfg.User, dbCfg.Password, dbCfg.Host, dbCfg.Port, dbCfg.DBName)
	log.Printf("資訊：準備執行資料庫遷移，來源: %s, DSN 使用資料庫: %s", migrationPath, dbCfg.DBName)

	m, err := migrate.New(migrationPath, dsn)
	if err != nil {
		log.Fatalf("錯誤：建立遷移實例失敗: %v", err)
	}
	defer m.Close()

	currentVersion, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Fatalf("錯誤：獲取資料庫遷移版本失敗: %v", err)
	}
	if dirty {
		log.Fatalf("錯誤：資料庫處於 dirty 狀態 (版本 %d)，遷移失敗。", currentVersion)
	}
	log.Printf("資訊：目前資料庫版本: %d。開始應用遷移...", currentVersion)

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		log.Println("資訊：資料庫結構已是最新，無需遷移。")
	case err != nil:
		log.Fatalf("錯誤：執行資料庫遷移 (m.Up) 失敗: %v", err)
	default:
		newVersion, _, _ := m.Version()
		log.Printf("資訊：資料庫遷移成功完成，版本更新至: %d。", newVersion)
	}
}
