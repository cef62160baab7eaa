// Package dial 实现 RFC 6555 Happy Eyeballs 拨号
//
// 三个层次：
//
//   - AddressList  待尝试地址的有序列表，每个地址最多被取出一次
//   - Sequential   按顺序逐个拨号，任一成功即返回，全部失败返回最后一个错误
//   - HappyEyeballs 在首选地址族与备选地址族之间竞速
//
// # 竞速规则
//
// 首选地址族取解析结果第一个地址的地址族。首选分支立即开始；
// 备选分支在 fallback 定时器到期后才开始：
//
//  1. 首选成功 → 返回，备选分支取消
//  2. 首选耗尽 → 立即启动备选（忽略定时器），返回备选结果
//  3. 备选成功 → 返回，首选分支取消
//  4. 备选失败 → 丢弃备选，继续等待首选
//
// 两个分支同时就绪时首选优先。
//
// # 使用示例
//
//	addrs := dial.NewAddressList(resolved)
//	he := dial.NewHappyEyeballs(addrs, 300*time.Millisecond, dialer, interfaces.DialOptions{})
//	sock, err := he.Dial(ctx)
package dial
