package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"admin_backend/internal/config"
	"admin_backend/internal/database"
	"admin_backend/internal/model"
	"admin_backend/internal/pkg/utils"
	"admin_backend/internal/seed"

	"gorm.io/gorm"
)

// 定义全局数据库变量
var db *gorm.DB

func initDB() {
	// 加载配置 (自动读取 .env)
	if err := config.LoadConfig(); err != nil {
		log.Fatalf("❌ 配置错误: %v", err)
	}

	if err := checkPersistent(config.AppConfig.DBDriver, config.AppConfig.DBDSN); err != nil {
		log.Fatalf("❌ %v", err)
	}

	var err error
	db, err = database.Open(config.AppConfig.DBDriver, config.AppConfig.DBDSN)
	if err != nil {
		log.Fatalf("❌ 无法连接数据库: %v\n请检查 .env 文件配置是否正确", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("❌ 表结构迁移失败: %v", err)
	}
}

// checkPersistent 拒绝内存库：命令行进程退出后所有改动都会丢失
func checkPersistent(driver, dsn string) error {
	if driver == "sqlite" && database.IsMemoryDSN(dsn) {
		return fmt.Errorf("DB_DSN=%q 指向内存数据库，命令执行后数据不会保存，请改用文件库或 postgres", dsn)
	}
	return nil
}

func main() {
	// 定义子命令
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	pwdCmd := flag.NewFlagSet("pwd", flag.ExitOnError)
	delCmd := flag.NewFlagSet("del", flag.ExitOnError)
	seedCmd := flag.NewFlagSet("seed", flag.ExitOnError)

	// add 子命令参数
	addName := addCmd.String("u", "", "用户名 (必须)")
	addPass := addCmd.String("p", "", "密码 (必须)")
	addRole := addCmd.String("r", "admin", "角色编码 (可选: super_admin/admin/editor/user)")

	// pwd 子命令参数
	pwdName := pwdCmd.String("u", "", "用户名 (必须)")
	pwdPass := pwdCmd.String("p", "", "新密码 (必须)")

	// del 子命令参数
	delName := delCmd.String("u", "", "要删除的用户名 (必须)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	initDB()

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *addName == "" || *addPass == "" {
			fmt.Println("❌ 错误: 必须提供用户名 (-u) 和密码 (-p)")
			addCmd.PrintDefaults()
			os.Exit(1)
		}
		handleAdd(*addName, *addPass, *addRole)

	case "list":
		listCmd.Parse(os.Args[2:])
		handleList()

	case "pwd":
		pwdCmd.Parse(os.Args[2:])
		if *pwdName == "" || *pwdPass == "" {
			fmt.Println("❌ 错误: 必须提供用户名 (-u) 和新密码 (-p)")
			pwdCmd.PrintDefaults()
			os.Exit(1)
		}
		handleResetPwd(*pwdName, *pwdPass)

	case "del":
		delCmd.Parse(os.Args[2:])
		if *delName == "" {
			fmt.Println("❌ 错误: 必须提供用户名 (-u)")
			delCmd.PrintDefaults()
			os.Exit(1)
		}
		handleDelete(*delName)

	case "seed":
		seedCmd.Parse(os.Args[2:])
		handleSeed()

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("🛠️  账号管理工具使用说明:")
	fmt.Println("  add   - 添加新用户 (例如: user-cli add -u admin2 -p 123456 -r admin)")
	fmt.Println("  list  - 列出所有用户")
	fmt.Println("  pwd   - 重置用户密码 (例如: user-cli pwd -u admin -p newpass)")
	fmt.Println("  del   - 删除用户 (例如: user-cli del -u admin2)")
	fmt.Println("  seed  - 空库时写入演示数据")
}

// --- 处理函数 ---

func handleAdd(username, password, roleCode string) {
	var count int64
	db.Model(&model.User{}).Where("username = ?", username).Count(&count)
	if count > 0 {
		fmt.Printf("❌ 用户 '%s' 已存在\n", username)
		return
	}
	if len(password) < 6 {
		fmt.Println("❌ 密码至少 6 位")
		return
	}

	var role model.Role
	if err := db.Where("code = ?", roleCode).First(&role).Error; err != nil {
		fmt.Printf("❌ 角色 '%s' 不存在，请先执行 seed 或在后台创建角色\n", roleCode)
		return
	}

	hashedPwd, err := utils.HashPassword(password)
	if err != nil {
		log.Fatalf("密码加密失败: %v", err)
	}
	newUser := model.User{
		Username: username,
		Password: hashedPwd,
		RealName: username,
		Status:   model.StatusEnabled,
		Roles:    []model.Role{role},
	}

	if err := db.Create(&newUser).Error; err != nil {
		log.Fatalf("创建失败: %v", err)
	}
	fmt.Printf("✅ 用户 '%s' 创建成功 (角色: %s)\n", username, roleCode)
}

func handleList() {
	var users []model.User
	db.Preload("Roles").Order("id asc").Find(&users)

	fmt.Println("\n📋 用户列表:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\t用户名\t姓名\t角色\t状态\t创建时间")
	fmt.Fprintln(w, "--\t---\t--\t--\t--\t----")
	for _, u := range users {
		status := "启用"
		if !u.Enabled() {
			status = "禁用"
		}
		codes := make([]string, 0, len(u.Roles))
		for _, r := range u.Roles {
			codes = append(codes, r.Code)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.RealName,
			strings.Join(codes, ","), status, u.CreatedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()
	fmt.Println("")
}

func handleResetPwd(username, newPass string) {
	var user model.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		fmt.Printf("❌ 未找到用户 '%s'\n", username)
		return
	}
	hashedPwd, err := utils.HashPassword(newPass)
	if err != nil {
		log.Fatalf("密码加密失败: %v", err)
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).Where("id = ?", user.ID).Update("password", hashedPwd).Error; err != nil {
			return err
		}
		// 旧的刷新令牌一并作废
		return tx.Model(&model.RefreshToken{}).Where("user_id = ?", user.ID).Update("revoked", true).Error
	})
	if err != nil {
		log.Fatalf("更新失败: %v", err)
	}
	fmt.Printf("✅ 用户 '%s' 密码已重置\n", username)
}

func handleDelete(username string) {
	var user model.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		fmt.Printf("❌ 未找到用户 '%s'\n", username)
		return
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&model.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Select("Roles").Delete(&user).Error
	})
	if err != nil {
		log.Fatalf("删除失败: %v", err)
	}
	fmt.Printf("🗑️  用户 '%s' 已删除\n", username)
}

func handleSeed() {
	if err := seed.Run(db); err != nil {
		log.Fatalf("写入失败: %v", err)
	}
	fmt.Println("✅ 演示数据已就绪 (已有数据时跳过)")
}
