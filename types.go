package v2md

import (
	"time"
)

// Via 发帖客户端标识
type Via string

const (
	ViaNone    Via = ""
	ViaIPhone  Via = "iPhone"
	ViaAndroid Via = "Android"
)

// NotificationType 提醒类型
type NotificationType string

const (
	NotificationReply   NotificationType = "reply"   // 回复了你
	NotificationRefer   NotificationType = "refer"   // 提到了你
	NotificationCollect NotificationType = "collect" // 收藏了你的主题
	NotificationThanks  NotificationType = "thanks"  // 感谢了你
)

// Topic 表示一个主题
type Topic struct {
	ID                int          `toml:"id"`                  // 主题ID
	Title             string       `toml:"title"`               // 标题
	NodeName          string       `toml:"node_name"`           // 节点代码
	NodeTitle         string       `toml:"node_title"`          // 节点名称
	Author            string       `toml:"author"`              // 作者
	Avatar            string       `toml:"avatar"`              // 作者头像
	Vote              int          `toml:"vote"`                // 投票数
	ReplyCount        int          `toml:"reply_count"`         // 回复数
	LastRepliedBy     string       `toml:"last_replied_by"`     // 最后回复者
	LastReplyDatetime string       `toml:"last_reply_datetime"` // 最后回复时间
	Content           string       `toml:"content"`             // 正文HTML
	CreatedAt         string       `toml:"created_at"`          // 发帖时间
	Via               Via          `toml:"via"`                 // 客户端
	IsCollect         bool         `toml:"is_collect"`          // 是否已收藏
	CSRFToken         string       `toml:"csrf_token"`          // 收藏/取消收藏用的 t 参数
	Views             int          `toml:"views"`               // 点击数
	Likes             int          `toml:"likes"`               // 收藏数
	Thanks            int          `toml:"thanks"`              // 感谢数
	Supplements       []Supplement `toml:"supplements"`         // 附言
}

// Supplement 主题附言
type Supplement struct {
	Content   string `toml:"content"`    // 附言HTML
	CreatedAt string `toml:"created_at"` // 附言时间
}

// Reply 表示主题下的一条回复
type Reply struct {
	ID        int    `toml:"id"`         // 回复ID (r_xxx)
	No        int    `toml:"no"`         // 楼层号
	Author    string `toml:"author"`     // 回复者
	Avatar    string `toml:"avatar"`     // 头像
	Content   string `toml:"content"`    // 回复HTML
	CreatedAt string `toml:"created_at"` // 回复时间
	Thanks    int    `toml:"thanks"`     // 感谢数
	Thanked   bool   `toml:"thanked"`    // 当前用户是否已感谢
}

// Node 表示一个节点
type Node struct {
	Name       string `toml:"name"`        // 节点代码 (URL slug)
	Title      string `toml:"title"`       // 节点名称
	Icon       string `toml:"icon"`        // 图标
	Intro      string `toml:"intro"`       // 简介
	Code       string `toml:"code"`        // 数字节点代码 (收藏链接)
	Once       string `toml:"once"`        // 收藏/取消收藏用的 once
	IsFollowed bool   `toml:"is_followed"` // 是否已收藏
	TopicCount int    `toml:"topic_count"` // 主题数
}

// MyNode 收藏的节点
type MyNode struct {
	ID    string `toml:"id"`
	Name  string `toml:"name"`
	Title string `toml:"title"`
	Icon  string `toml:"icon"`
}

// Social 社交链接
type Social struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
	URL  string `toml:"url"`
	Icon string `toml:"icon"`
}

// UserProfile 用户资料
type UserProfile struct {
	ID         int      `toml:"id"`          // 会员编号
	Username   string   `toml:"username"`    // 用户名
	Avatar     string   `toml:"avatar"`      // 头像
	Bio        string   `toml:"bio"`         // 简介
	TagLine    string   `toml:"tag_line"`    // 签名
	Company    string   `toml:"company"`     // 公司
	WorkTitle  string   `toml:"work_title"`  // 职位
	IsOnline   bool     `toml:"is_online"`   // 是否在线
	CreatedAt  string   `toml:"created_at"`  // 注册时间
	DAU        string   `toml:"dau"`         // 今日活跃度排名
	BlockToken string   `toml:"block_token"` // 屏蔽用的 t 参数
	Socials    []Social `toml:"socials"`     // 社交链接
}

// Notification 提醒
type Notification struct {
	Type       NotificationType `toml:"type"`
	Username   string           `toml:"username"`
	Avatar     string           `toml:"avatar"`
	TopicID    int              `toml:"topic_id"`
	TopicTitle string           `toml:"topic_title"`
	Payload    string           `toml:"payload"`
	CreatedAt  string           `toml:"created_at"`
}

// UserReply 用户回复列表中的一项
type UserReply struct {
	Author     string `toml:"author"`
	NodeName   string `toml:"node_name"`
	NodeTitle  string `toml:"node_title"`
	TopicID    int    `toml:"topic_id"`
	TopicTitle string `toml:"topic_title"`
	Content    string `toml:"content"`
	CreatedAt  string `toml:"created_at"`
}

// UserBox 右侧栏账户信息
type UserBox struct {
	Unread           int `toml:"unread"`             // 未读提醒
	MyFavNodeCount   int `toml:"my_fav_node_count"`  // 收藏节点数
	MyFavTopicCount  int `toml:"my_fav_topic_count"` // 收藏主题数
	MyFollowingCount int `toml:"my_following_count"` // 关注人数
}

// UserInfo 当前登录用户
type UserInfo struct {
	Username string `toml:"username"`
	Avatar   string `toml:"avatar"`
}

// Following 关注的用户
type Following struct {
	Username string `toml:"username"`
	Avatar   string `toml:"avatar"`
}

// Balance 账户余额
type Balance struct {
	Gold   int `toml:"gold"`
	Silver int `toml:"silver"`
	Bronze int `toml:"bronze"`
}

// TopicPage 主题详情页解析结果
type TopicPage struct {
	Topic    Topic   `toml:"topic"`
	Replies  []Reply `toml:"replies"`
	CurrPage int     `toml:"curr_page"`
	MaxPage  int     `toml:"max_page"`
	Once     string  `toml:"once"`
	UserBox  UserBox `toml:"user_box"`
}

// NodePage 节点页解析结果
type NodePage struct {
	Node    Node    `toml:"node"`
	Topics  []Topic `toml:"topics"`
	MaxPage int     `toml:"max_page"`
}

// TopicListPage 带分页的主题列表
type TopicListPage struct {
	Topics  []Topic `toml:"topics"`
	MaxPage int     `toml:"max_page"`
}

// MemberTopicsPage 用户主题列表
type MemberTopicsPage struct {
	Topics     []Topic `toml:"topics"`
	TopicCount int     `toml:"topic_count"`
	MaxPage    int     `toml:"max_page"`
	IsHidden   bool    `toml:"is_hidden"`
}

// MemberRepliesPage 用户回复列表
type MemberRepliesPage struct {
	Replies    []UserReply `toml:"replies"`
	ReplyCount int         `toml:"reply_count"`
	MaxPage    int         `toml:"max_page"`
}

// ProfilePage 用户主页解析结果
type ProfilePage struct {
	Profile    UserProfile `toml:"profile"`
	Once       string      `toml:"once"`
	IsFollowed bool        `toml:"is_followed"`
	IsHidden   bool        `toml:"is_hidden"`
}

// NotificationPage 提醒列表
type NotificationPage struct {
	Notifications []Notification `toml:"notifications"`
	MaxPage       int            `toml:"max_page"`
}

// BalancePage 余额页
type BalancePage struct {
	Balance Balance `toml:"balance"`
	UserBox UserBox `toml:"user_box"`
}

// LoginForm 登录表单参数。V2EX 每次渲染登录页都会随机生成输入框的 name。
type LoginForm struct {
	UsernameField string `toml:"username_field"`
	PasswordField string `toml:"password_field"`
	CaptchaField  string `toml:"captcha_field"`
	Once          string `toml:"once"`
	Next          string `toml:"next"`
	CaptchaURL    string `toml:"captcha_url"`
	CoolingDown   bool   `toml:"cooling_down"` // 登录受限
}

// CookieEntry 表示Cookie信息
type CookieEntry struct {
	Name     string    `toml:"name"`      // Cookie名称
	Value    string    `toml:"value"`     // Cookie值
	Domain   string    `toml:"domain"`    // 域名
	Path     string    `toml:"path"`      // 路径
	Expires  time.Time `toml:"expires"`   // 过期时间
	MaxAge   int       `toml:"max_age"`   // 最大存在时间(秒)
	Secure   bool      `toml:"secure"`    // 是否只在HTTPS下传输
	HttpOnly bool      `toml:"http_only"` // 是否仅HTTP可访问
	SameSite string    `toml:"same_site"` // SameSite属性
}

// CookieJar Cookie管理器
type CookieJar struct {
	Cookies     []CookieEntry `toml:"cookies"`      // Cookie列表
	LastUpdated time.Time     `toml:"last_updated"` // 最后更新时间
}
